package main

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/nestris-commentator/internal/packet"
)

type outFrame struct {
	Frame   int `json:"frame"`
	Packets []struct {
		Tag    string         `json:"tag"`
		Packet map[string]any `json:"packet"`
	} `json:"packets"`
	Error string `json:"error"`
}

func decodeLines(t *testing.T, out string) []outFrame {
	t.Helper()
	var frames []outFrame
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		var f outFrame
		require.NoError(t, json.Unmarshal([]byte(line), &f))
		frames = append(frames, f)
	}
	return frames
}

func TestRun_HexAndBase64(t *testing.T) {
	a := packet.Encode(1, packet.GameStart{Level: 18}, packet.Placement{NextPiece: packet.PieceT})
	b := packet.Encode(0, packet.GameEnd{})
	in := "# captured\n" + hex.EncodeToString(a) + "\n\nb64:" + base64.StdEncoding.EncodeToString(b) + "\n"

	var out bytes.Buffer
	require.NoError(t, run(strings.NewReader(in), &out, -1))

	frames := decodeLines(t, out.String())
	require.Len(t, frames, 2)

	require.Len(t, frames[0].Packets, 2)
	assert.Equal(t, packet.TagGameStart.String(), frames[0].Packets[0].Tag)
	assert.EqualValues(t, 18, frames[0].Packets[0].Packet["level"])
	assert.EqualValues(t, 1, frames[0].Packets[0].Packet["playerId"])
	assert.Equal(t, packet.TagPlacement.String(), frames[0].Packets[1].Tag)
	assert.Empty(t, frames[0].Error)

	require.Len(t, frames[1].Packets, 1)
	assert.Equal(t, 2, frames[1].Frame)
}

func TestRun_ReportsDecodeErrors(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(strings.NewReader("07\n"), &out, -1))

	frames := decodeLines(t, out.String())
	require.Len(t, frames, 1)
	assert.Empty(t, frames[0].Packets)
	assert.NotEmpty(t, frames[0].Error)
}

func TestRun_Outbound(t *testing.T) {
	payload := packet.Encode(0, packet.GameEnd{})[1:]
	var out bytes.Buffer
	require.NoError(t, run(strings.NewReader(hex.EncodeToString(payload)), &out, 1))

	frames := decodeLines(t, out.String())
	require.Len(t, frames[0].Packets, 1)
	assert.EqualValues(t, 1, frames[0].Packets[0].Packet["playerId"])
}

func TestRun_BadEncoding(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, run(strings.NewReader("zz\n"), &out, -1))
}
