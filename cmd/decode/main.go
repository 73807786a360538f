// Command decode prints the packets inside captured game frames as JSON.
//
// Frames are read one per line from the arguments or, when there are none,
// from stdin. Each frame is hex, or base64 when prefixed with "b64:".
package main

import (
	"bufio"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/DoyleJ11/nestris-commentator/internal/packet"
)

type decoded struct {
	Frame   int            `json:"frame"`
	Packets []taggedPacket `json:"packets"`
	Error   string         `json:"error,omitempty"`
}

type taggedPacket struct {
	Tag    string        `json:"tag"`
	Packet packet.Packet `json:"packet"`
}

func main() {
	outbound := flag.Int("outbound", -1, "treat frames as outbound payloads for this player id")
	flag.Parse()

	var in io.Reader = os.Stdin
	if flag.NArg() > 0 {
		in = strings.NewReader(strings.Join(flag.Args(), "\n"))
	}
	if err := run(in, os.Stdout, *outbound); err != nil {
		fmt.Fprintln(os.Stderr, "decode:", err)
		os.Exit(1)
	}
}

func run(in io.Reader, out io.Writer, outbound int) error {
	enc := json.NewEncoder(out)
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	n := 0
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		n++
		frame, err := parseFrame(line)
		if err != nil {
			return fmt.Errorf("frame %d: %w", n, err)
		}

		var pkts []packet.Packet
		if outbound >= 0 {
			pkts, err = packet.DecodeOutbound(byte(outbound), frame)
		} else {
			pkts, err = packet.Decode(frame)
		}
		d := decoded{Frame: n, Packets: make([]taggedPacket, 0, len(pkts))}
		for _, p := range pkts {
			d.Packets = append(d.Packets, taggedPacket{Tag: p.Tag().String(), Packet: p})
		}
		if err != nil {
			d.Error = err.Error()
		}
		if err := enc.Encode(d); err != nil {
			return err
		}
	}
	return sc.Err()
}

func parseFrame(s string) ([]byte, error) {
	if b64, ok := strings.CutPrefix(s, "b64:"); ok {
		return base64.StdEncoding.DecodeString(b64)
	}
	return hex.DecodeString(strings.ReplaceAll(s, " ", ""))
}
