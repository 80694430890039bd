// Package ir implements an edge-driven pulse-distance and Manchester
// infrared remote-control protocol engine: NEC, NEC-16, NEC-Samsung, RC5,
// RC6, Samsung SBP and Denon decoders and encoders.
//
// Every decoder is a bounded, allocation-free state machine driven by
// (edge polarity, timestamp) events off a single input pin. There is no
// heap allocation and no floating point on the decode/encode path; the
// only collaborators an embedder needs to supply are a pin reader and a
// PWM gate (see EdgeDriver and PulsetrainSender).
package ir
