package wireless

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/edgeflow/edgeflow/internal/hal"
	"github.com/edgeflow/edgeflow/internal/ir"
	"github.com/edgeflow/edgeflow/internal/logger"
	"github.com/edgeflow/edgeflow/internal/node"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// halEdgeSource adapts a hal.GPIOProvider pin into internal/ir's
// GPIOProvider contract. The reference decoders only need relative
// timing, so wall-clock microseconds from time.Now() stand in for the
// free-running hardware sample counter the engine was designed around.
type halEdgeSource struct {
	gpio hal.GPIOProvider
	pin  int
}

func (h *halEdgeSource) DigitalRead() bool {
	v, _ := h.gpio.DigitalRead(h.pin)
	return v
}

func (h *halEdgeSource) WatchEdge(callback func(rising bool, timestamp uint32)) {
	h.gpio.WatchEdge(h.pin, hal.EdgeBoth, func(pin int, value bool) {
		callback(value, uint32(time.Now().UnixMicro()))
	})
}

// irBroadcaster, when set via SetIRBroadcaster, receives every decoded IR
// command alongside capture-mode edge dumps so a UI can show live IR
// activity without polling. Left nil (a no-op) when nothing wired it up,
// the same optional-collaborator shape internal/hal.GPIOMonitor uses for
// live pin state.
var irBroadcaster func(payload map[string]interface{})

// SetIRBroadcaster installs the callback every IR node instance publishes
// decoded commands and capture dumps through.
func SetIRBroadcaster(fn func(payload map[string]interface{})) {
	irBroadcaster = fn
}

func broadcastIR(payload map[string]interface{}) {
	if irBroadcaster != nil {
		irBroadcaster(payload)
	}
}

// sendTickInterval stands in for the timer ISR a real embedded sender
// would be driven from: it just has to be finer than the shortest pulse
// width any protocol in internal/ir produces (Denon's 360us zero-space is
// the tightest) so PulsetrainSender.Tick never misses an edge.
const sendTickInterval = 50 * time.Microsecond

// halPWMGate adapts a hal.GPIOProvider pin into internal/ir's PWMGate.
type halPWMGate struct {
	gpio hal.GPIOProvider
	pin  int
}

func (g *halPWMGate) SetCarrierOn(on bool) {
	if on {
		g.gpio.PWMWrite(g.pin, 128)
		return
	}
	g.gpio.PWMWrite(g.pin, 0)
}

// IRExecutor implements the "ir" node: send, receive, learn and
// decode_buffer operations over the NEC/NEC-16/NEC-Samsung/RC5/RC6/SBP/
// Denon protocol engine.
type IRExecutor struct {
	txPin      int
	rxPin      int
	protocol   string
	operation  string
	frequency  int
	samplerate uint32
	sbpTiming  ir.SBPTiming

	mqttBroker string
	mqttTopic  string
	mqttClient mqtt.Client
	mqttMu     sync.Mutex

	halInstance hal.HAL

	rxMu      sync.Mutex
	rxResults chan node.Message
	rxStarted bool
}

// NewIRExecutor creates a new IR executor.
func NewIRExecutor() node.Executor {
	return &IRExecutor{
		protocol:   "NEC",
		operation:  "send",
		frequency:  38000,
		samplerate: 1_000_000,
		sbpTiming:  ir.DefaultSBPTiming(),
		rxResults:  make(chan node.Message, 16),
	}
}

// Init implements node.Executor.
func (e *IRExecutor) Init(config map[string]interface{}) error {
	if tp, ok := config["txPin"].(float64); ok {
		e.txPin = int(tp)
	}
	if rp, ok := config["rxPin"].(float64); ok {
		e.rxPin = int(rp)
	}
	if p, ok := config["protocol"].(string); ok {
		e.protocol = p
	}
	if op, ok := config["operation"].(string); ok {
		e.operation = op
	}
	if f, ok := config["frequency"].(float64); ok {
		e.frequency = int(f)
	}
	if sr, ok := config["samplerate"].(float64); ok && sr > 0 {
		e.samplerate = uint32(sr)
	}
	if b, ok := config["mqttBroker"].(string); ok {
		e.mqttBroker = b
	}
	if t, ok := config["mqttTopic"].(string); ok {
		e.mqttTopic = t
	}

	h, err := hal.GetGlobalHAL()
	if err != nil {
		return fmt.Errorf("failed to get HAL: %w", err)
	}
	e.halInstance = h

	return nil
}

// Execute implements node.Executor.
func (e *IRExecutor) Execute(ctx context.Context, msg node.Message) (node.Message, error) {
	operation := e.operation
	if op, ok := msg.Payload["operation"].(string); ok {
		operation = op
	}

	protocol := e.protocol
	if p, ok := msg.Payload["protocol"].(string); ok {
		protocol = p
	}

	switch operation {
	case "send":
		return e.send(msg, protocol)
	case "receive":
		return e.receive(ctx, protocol)
	case "learn":
		return e.learn(ctx)
	case "decode_buffer":
		return e.decodeBuffer(msg)
	default:
		return node.Message{}, fmt.Errorf("unknown IR operation: %s", operation)
	}
}

func (e *IRExecutor) buildCommand(protocol string, address, data uint32, toggle bool) (ir.Command, error) {
	var p ir.Protocol
	switch protocol {
	case "NEC":
		p = ir.ProtocolNEC
	case "NEC-16":
		p = ir.ProtocolNEC16
	case "NEC-Samsung":
		p = ir.ProtocolNECSamsung
	case "RC5":
		p = ir.ProtocolRC5
	case "RC6":
		p = ir.ProtocolRC6
	case "SBP":
		p = ir.ProtocolSBP
	case "Denon":
		p = ir.ProtocolDenon
	default:
		return ir.Command{}, fmt.Errorf("unsupported IR protocol: %s", protocol)
	}
	return ir.Command{Protocol: p, Address: address, Data: data, Toggle: toggle}, nil
}

func (e *IRExecutor) send(msg node.Message, protocol string) (node.Message, error) {
	address := uint32(0)
	data := uint32(0)
	toggle := false

	if a, ok := msg.Payload["address"].(float64); ok {
		address = uint32(a)
	}
	if c, ok := msg.Payload["command"].(float64); ok {
		data = uint32(c)
	}
	if tg, ok := msg.Payload["toggle"].(bool); ok {
		toggle = tg
	}

	cmd, err := e.buildCommand(protocol, address, data, toggle)
	if err != nil {
		return node.Message{}, err
	}

	var buf ir.PulsetrainBuffer
	if !buf.Fill(cmd, e.sbpTiming) {
		return node.Message{}, fmt.Errorf("failed to encode IR command for protocol %s", protocol)
	}

	sent := false
	if e.halInstance != nil && e.txPin != 0 {
		gpio := e.halInstance.GPIO()
		if err := gpio.SetMode(e.txPin, hal.PWM); err != nil {
			return node.Message{}, fmt.Errorf("failed to set txPin mode: %w", err)
		}
		if err := gpio.SetPWMFrequency(e.txPin, e.frequency); err != nil {
			return node.Message{}, fmt.Errorf("failed to set IR carrier frequency: %w", err)
		}

		gate := &halPWMGate{gpio: gpio, pin: e.txPin}
		sender := ir.NewPulsetrainSender(gate)
		state := sender.Start(&buf, uint32(time.Now().UnixMicro()))
		for state == ir.SenderSending {
			time.Sleep(sendTickInterval)
			state = sender.Tick(uint32(time.Now().UnixMicro()))
		}
		sent = true
	} else {
		logger.Warn("ir: send called without a configured txPin; signal was only encoded", zap.String("protocol", protocol))
	}

	return node.Message{
		Type: node.MessageTypeData,
		Payload: map[string]interface{}{
			"protocol":      protocol,
			"address":       address,
			"command":       data,
			"frequency_hz":  e.frequency,
			"timings_us":    buf.Durations(),
			"timings_count": len(buf.Durations()),
			"tx_pin":        e.txPin,
			"sent":          sent,
		},
	}, nil
}

// receive blocks until one command has been decoded off rxPin or ctx is
// done, starting the edge-driven receiver on first use with the given
// protocol. The decoder is driven straight off hal's edge callback: on Done
// or Error it is reset and, if a command completed, published to rxResults
// for this or any later call to pick up. The decoder is always built at the
// canonical 1,000,000 Hz rate, since the callback's timestamps are
// wall-clock microseconds regardless of e.samplerate (which only scales the
// caller-supplied sample counts decode_buffer replays offline). Only the
// first call's protocol takes effect — the callback is registered once and
// its decoder is fixed for the rxPin's lifetime, same as the original
// per-pin receiver this is adapted from.
func (e *IRExecutor) receive(ctx context.Context, protocol string) (node.Message, error) {
	if e.halInstance == nil || e.rxPin == 0 {
		return node.Message{}, fmt.Errorf("IR receive requires a configured rxPin")
	}

	e.rxMu.Lock()
	if !e.rxStarted {
		gpio := e.halInstance.GPIO()
		if err := gpio.SetMode(e.rxPin, hal.Input); err != nil {
			e.rxMu.Unlock()
			return node.Message{}, fmt.Errorf("failed to set rxPin mode: %w", err)
		}
		if err := gpio.SetPull(e.rxPin, hal.PullUp); err != nil {
			e.rxMu.Unlock()
			return node.Message{}, fmt.Errorf("failed to set rxPin pull mode: %w", err)
		}

		dec := e.decoderFor(protocol)

		gpio.WatchEdge(e.rxPin, hal.EdgeBoth, func(pin int, value bool) {
			st := dec.Event(value, uint32(time.Now().UnixMicro()))
			switch st.Kind {
			case ir.StateDone:
				dec.Reset()
				msg := node.Message{
					Type: node.MessageTypeData,
					Payload: map[string]interface{}{
						"protocol": protocol,
						"address":  st.Command.Address,
						"command":  st.Command.Data,
						"toggle":   st.Command.Toggle,
						"rx_pin":   e.rxPin,
					},
				}
				if e.mqttBroker != "" {
					e.publishCommands([]ir.Command{st.Command}, protocol)
				}
				broadcastIR(msg.Payload)
				select {
				case e.rxResults <- msg:
				default:
				}
			case ir.StateError:
				dec.Reset()
			}
		})
		e.rxStarted = true
	}
	e.rxMu.Unlock()

	select {
	case <-ctx.Done():
		return node.Message{}, ctx.Err()
	case msg := <-e.rxResults:
		return msg, nil
	}
}

// decoderFor builds a fresh protocol decoder at the canonical 1,000,000 Hz
// rate. The live receive() callback always delivers wall-clock microsecond
// timestamps, and decodeBuffer's BufferDecoder always wraps a decoder at
// this same rate (see internal/ir.NewBufferDecoder's contract) — so every
// caller needs the same canonical decoder, never one scaled to
// e.samplerate, which only scales decode_buffer's externally-sampled
// counts back into microseconds before they reach this decoder.
func (e *IRExecutor) decoderFor(protocol string) ir.Decoder {
	const canonicalRate = 1_000_000
	switch protocol {
	case "NEC-16":
		return ir.NewNEC16(canonicalRate)
	case "NEC-Samsung":
		return ir.NewNECSamsung(canonicalRate)
	case "RC5":
		return ir.NewRC5Decoder(canonicalRate)
	case "RC6":
		return ir.NewRC6Decoder(canonicalRate)
	case "SBP":
		return ir.NewSBPDecoder(e.sbpTiming, canonicalRate)
	case "Denon":
		return ir.NewDenonDecoder(canonicalRate)
	default:
		return ir.NewNEC(canonicalRate)
	}
}

// learn records raw inter-edge gaps off rxPin for a short window without
// interpreting any protocol, for capturing an unrecognized remote.
func (e *IRExecutor) learn(ctx context.Context) (node.Message, error) {
	if e.halInstance == nil || e.rxPin == 0 {
		return node.Message{}, fmt.Errorf("IR learn requires a configured rxPin")
	}

	gpio := e.halInstance.GPIO()
	if err := gpio.SetMode(e.rxPin, hal.Input); err != nil {
		return node.Message{}, fmt.Errorf("failed to set rxPin mode: %w", err)
	}
	if err := gpio.SetPull(e.rxPin, hal.PullUp); err != nil {
		return node.Message{}, fmt.Errorf("failed to set rxPin pull mode: %w", err)
	}

	capture := ir.NewCaptureDecoder()
	source := &halEdgeSource{gpio: gpio, pin: e.rxPin}
	driver := ir.NewEdgeDriver[*ir.CaptureDecoder](source, capture)

	select {
	case <-ctx.Done():
	case <-time.After(3 * time.Second):
	}

	edges := driver.Decoder().Edges()
	edgesOut := make([]uint32, len(edges))
	copy(edgesOut, edges)

	payload := map[string]interface{}{
		"rx_pin":      e.rxPin,
		"edges_us":    edgesOut,
		"edges_count": len(edgesOut),
	}
	broadcastIR(payload)

	return node.Message{Type: node.MessageTypeData, Payload: payload}, nil
}

// decodeBuffer replays a caller-supplied edge buffer offline through a
// fresh protocol decoder, without touching any pin.
func (e *IRExecutor) decodeBuffer(msg node.Message) (node.Message, error) {
	raw, ok := msg.Payload["edges"].([]interface{})
	if !ok {
		return node.Message{}, fmt.Errorf("decode_buffer requires an 'edges' array of sample counts")
	}

	samplerate := e.samplerate
	if sr, ok := msg.Payload["samplerate"].(float64); ok && sr > 0 {
		samplerate = uint32(sr)
	}

	edges := make([]ir.BufferEdge, 0, len(raw))
	rising := false
	var cumulative uint32
	for _, v := range raw {
		n, ok := v.(float64)
		if !ok {
			return node.Message{}, fmt.Errorf("decode_buffer edge samples must be numbers")
		}
		cumulative += uint32(n)
		edges = append(edges, ir.BufferEdge{Rising: rising, Sample: cumulative})
		rising = !rising
	}

	protocol := e.protocol
	if p, ok := msg.Payload["protocol"].(string); ok {
		protocol = p
	}

	bd := ir.NewBufferDecoder(samplerate, func() ir.Decoder {
		return e.decoderFor(protocol)
	})
	commands := bd.Decode(edges)

	results := make([]map[string]interface{}, len(commands))
	for i, c := range commands {
		results[i] = map[string]interface{}{
			"protocol": c.Protocol.String(),
			"address":  c.Address,
			"command":  c.Data,
			"toggle":   c.Toggle,
		}
	}

	if e.mqttBroker != "" {
		e.publishCommands(commands, protocol)
	}

	payload := map[string]interface{}{
		"protocol": protocol,
		"commands": results,
		"count":    len(results),
	}
	broadcastIR(payload)

	return node.Message{Type: node.MessageTypeData, Payload: payload}, nil
}

func (e *IRExecutor) publishCommands(commands []ir.Command, protocol string) {
	client, err := e.mqttClientFor()
	if err != nil {
		logger.Warn("ir: mqtt publish skipped", zap.Error(err))
		return
	}
	topic := e.mqttTopic
	if topic == "" {
		topic = "edgeflow/ir"
	}
	for _, c := range commands {
		payload := fmt.Sprintf(`{"protocol":"%s","address":%d,"command":%d,"toggle":%t}`,
			c.Protocol.String(), c.Address, c.Data, c.Toggle)
		token := client.Publish(fmt.Sprintf("%s/%s", topic, protocol), 0, false, payload)
		token.Wait()
	}
}

func (e *IRExecutor) mqttClientFor() (mqtt.Client, error) {
	e.mqttMu.Lock()
	defer e.mqttMu.Unlock()

	if e.mqttClient != nil && e.mqttClient.IsConnected() {
		return e.mqttClient, nil
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(e.mqttBroker)
	opts.SetClientID(fmt.Sprintf("edgeflow_ir_%d", time.Now().Unix()))
	opts.SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	token.Wait()
	if token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect failed: %w", token.Error())
	}
	e.mqttClient = client
	return client, nil
}

// Cleanup releases resources.
func (e *IRExecutor) Cleanup() error {
	e.mqttMu.Lock()
	if e.mqttClient != nil && e.mqttClient.IsConnected() {
		e.mqttClient.Disconnect(250)
	}
	e.mqttMu.Unlock()
	return nil
}
