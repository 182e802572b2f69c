// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package framer splits the logger character stream into timestamped
// messages.
//
// The logger writes each message as:
//
//	M<9 digits>;<message>;
//
// where the digits hold the micro-second counter when the message was
// logged. A ';' inside a message is replaced by ':' by the logger.
package framer // import "github.com/go-lpc/sdlog/framer"

import (
	"bytes"
	"strconv"
)

const (
	// Sep separates tokens in the character stream.
	Sep = ';'

	markerLen = 10 // 'M' + 9 digits
)

// DefaultEdge is the number of tokens discarded at each end of a stream.
// The first and last tokens of a stream cut at a file boundary are
// partial messages or markers whose message is partial.
const DefaultEdge = 2

// Message is a timestamped message of the character stream.
type Message struct {
	Counter uint32 // micro-second counter when the message was logged
	Text    string
}

// Framer extracts messages from a character stream.
type Framer struct {
	Edge int // number of tokens discarded at each end of the stream
}

// Frame extracts messages from p, with the DefaultEdge policy.
func Frame(p []byte) []Message {
	return Framer{Edge: DefaultEdge}.Frame(p)
}

// Frame extracts messages from p.
// Tokens that are neither a marker nor the message following a marker
// are ignored. A trailing marker without a message is dropped.
func (fr Framer) Frame(p []byte) []Message {
	toks := bytes.Split(p, []byte{Sep})
	if n := fr.Edge; n > 0 {
		if len(toks) <= 2*n {
			return nil
		}
		toks = toks[n : len(toks)-n]
	}

	var msgs []Message
	for i := 0; i < len(toks)-1; {
		cnt, ok := marker(toks[i])
		if !ok {
			i++
			continue
		}
		msgs = append(msgs, Message{Counter: cnt, Text: string(toks[i+1])})
		i += 2
	}
	return msgs
}

// marker returns the counter value held by a marker token.
func marker(tok []byte) (uint32, bool) {
	if len(tok) != markerLen || tok[0] != 'M' {
		return 0, false
	}
	for _, c := range tok[1:] {
		if c < '0' || '9' < c {
			return 0, false
		}
	}
	v, err := strconv.ParseUint(string(tok[1:]), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}

// Split returns the counters and texts of msgs as two parallel slices.
func Split(msgs []Message) ([]uint32, []string) {
	var (
		cnts = make([]uint32, len(msgs))
		txts = make([]string, len(msgs))
	)
	for i, msg := range msgs {
		cnts[i] = msg.Counter
		txts[i] = msg.Text
	}
	return cnts, txts
}
