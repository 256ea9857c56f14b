package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	tiktoken "github.com/euforicio/tiktoken-go"
	"github.com/euforicio/tiktoken-go/tokenizer"
)

var (
	flagEncoding string
	flagModel    string
	flagAllow    []string
)

func resolveEncoding() (*tiktoken.Encoding, error) {
	if flagModel != "" {
		return tiktoken.EncodingForModel(flagModel)
	}
	return tiktoken.GetEncoding(flagEncoding)
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	return enc.Encode(v)
}

func main() {
	root := &cobra.Command{
		Use:           "tiktoken",
		Short:         "Tokenize text with tiktoken-compatible BPE encodings",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagEncoding, "encoding", "cl100k_base", "encoding name")
	root.PersistentFlags().StringVar(&flagModel, "model", "", "model name (overrides --encoding)")

	encodeCmd := &cobra.Command{
		Use:   "encode [text...]",
		Short: "Encode text to token ids",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			enc, err := resolveEncoding()
			if err != nil {
				return err
			}
			tokens, err := enc.Encode(strings.Join(args, " "), flagAllow, nil)
			if err != nil {
				return err
			}
			return writeJSON(tokens)
		},
	}
	encodeCmd.Flags().StringSliceVar(&flagAllow, "allow-special", nil, `special literals to recognize ("all" for every one)`)

	decodeCmd := &cobra.Command{
		Use:   "decode [id...]",
		Short: "Decode token ids back to text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			enc, err := resolveEncoding()
			if err != nil {
				return err
			}
			tokens := make([]tokenizer.Rank, 0, len(args))
			for _, a := range args {
				id, err := strconv.ParseUint(a, 10, 32)
				if err != nil {
					return fmt.Errorf("invalid token id %q: %w", a, err)
				}
				tokens = append(tokens, tokenizer.Rank(id))
			}
			return writeJSON(enc.Decode(tokens))
		},
	}

	countCmd := &cobra.Command{
		Use:   "count [text...]",
		Short: "Count tokens per argument",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			enc, err := resolveEncoding()
			if err != nil {
				return err
			}
			batches, err := enc.EncodeBatch(args, nil, nil)
			if err != nil {
				return err
			}
			counts := make([]int, len(batches))
			for i, b := range batches {
				counts[i] = len(b)
			}
			return writeJSON(counts)
		},
	}

	encodingsCmd := &cobra.Command{
		Use:   "encodings",
		Short: "List available encodings",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return writeJSON(tiktoken.ListEncodingNames())
		},
	}

	root.AddCommand(encodeCmd, decodeCmd, countCmd, encodingsCmd)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
