package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aki/gen3talk/internal/cli/ui"
	"github.com/aki/gen3talk/internal/codec"
)

var codecCmd = &cobra.Command{
	Use:   "codec",
	Short: "Convert between Gen3 bytes and text",
}

var (
	decodeROM    string
	decodeOffset string
	encodeMaxLen int
)

var codecDecodeCmd = &cobra.Command{
	Use:   "decode [hex...]",
	Short: "Decode Gen3 bytes to text",
	Long: `Decode Gen3 bytes to text.

Bytes are given as hex, with or without separators. With --rom and --offset
the string is read from the game image instead.`,
	Example: `  gen3talk codec decode "C2 D9 E0 E0 E3 FF"
  gen3talk codec decode --rom game.gba --offset 0x1A2B3C`,
	RunE: runCodecDecode,
}

var codecEncodeCmd = &cobra.Command{
	Use:   "encode <text>",
	Short: "Encode text to Gen3 bytes",
	Example: `  gen3talk codec encode "Hello, {PLAYER}!"
  gen3talk codec encode --max-len 16 "A rather long line"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCodecEncode,
}

func init() {
	codecDecodeCmd.Flags().StringVar(&decodeROM, "rom", "", "Game image to read from (default rom.path)")
	codecDecodeCmd.Flags().StringVar(&decodeOffset, "offset", "", "Offset of the string in the image")
	codecEncodeCmd.Flags().IntVar(&encodeMaxLen, "max-len", 0, "Maximum encoded length including the terminator (default codec.max_len)")

	codecCmd.AddCommand(codecDecodeCmd)
	codecCmd.AddCommand(codecEncodeCmd)
}

// codecResult is the JSON shape of both codec commands
type codecResult struct {
	Hex    string `json:"hex"`
	Text   string `json:"text"`
	Length int    `json:"length"`
}

func runCodecDecode(cmd *cobra.Command, args []string) error {
	var data []byte
	if decodeOffset != "" {
		if len(args) > 0 {
			return fmt.Errorf("give either hex bytes or --offset, not both")
		}
		b, err := readROMString()
		if err != nil {
			return err
		}
		data = b
	} else {
		if len(args) == 0 {
			return fmt.Errorf("no bytes to decode")
		}
		b, err := codec.ParseHex(strings.Join(args, " "))
		if err != nil {
			return err
		}
		data = b
	}

	result := codecResult{Hex: codec.FormatHex(data), Text: codec.Decode(data), Length: len(data)}
	if ui.GlobalFormatter.IsJSON() {
		return ui.GlobalFormatter.Output(result)
	}
	ui.OutputLine("%s", result.Text)
	return nil
}

func readROMString() ([]byte, error) {
	offset, err := strconv.ParseInt(decodeOffset, 0, 64)
	if err != nil || offset < 0 {
		return nil, fmt.Errorf("invalid offset: %s", decodeOffset)
	}

	path := decodeROM
	if path == "" {
		cfg, err := loadConfig()
		if err != nil {
			return nil, err
		}
		path = cfg.ROM.Path
	}
	if path == "" {
		return nil, fmt.Errorf("no game image given; use --rom or set rom.path")
	}

	image, err := loadROM(path)
	if err != nil {
		return nil, err
	}
	return image.StringAt(int(offset))
}

func runCodecEncode(cmd *cobra.Command, args []string) error {
	maxLen := encodeMaxLen
	if maxLen <= 0 {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		maxLen = cfg.Codec.MaxLen
	}

	text := strings.Join(args, " ")
	data := codec.Encode(text, maxLen)

	result := codecResult{Hex: codec.FormatHex(data), Text: codec.Decode(data), Length: len(data)}
	if ui.GlobalFormatter.IsJSON() {
		return ui.GlobalFormatter.Output(result)
	}
	ui.OutputLine("%s", result.Hex)
	if result.Text != text {
		ui.Warning("Round trip differs: %q", result.Text)
	}
	return nil
}
