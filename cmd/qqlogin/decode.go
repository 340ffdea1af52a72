package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tencentrelay/qqlogin/internal/crypto"
	"github.com/tencentrelay/qqlogin/internal/sso"
	"github.com/tencentrelay/qqlogin/internal/tlv"
)

func decodeCmd() *cobra.Command {
	var keyHex string

	cmd := &cobra.Command{
		Use:   "decode <frame-file>",
		Short: "Pretty-print the TLV blocks carried by a captured SSO response frame",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(cmd, args[0], keyHex)
		},
	}
	cmd.Flags().StringVar(&keyHex, "key", "", "32-hex-char TEA key to decrypt the frame body with")
	cmd.MarkFlagRequired("key")
	return cmd
}

func runDecode(cmd *cobra.Command, path, keyHex string) error {
	frame, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("qqlogin: read frame file: %w", err)
	}

	keyBytes, err := hex.DecodeString(keyHex)
	if err != nil {
		return fmt.Errorf("qqlogin: decode --key: %w", err)
	}
	key := crypto.NewTEAKey(keyBytes)

	resp, err := sso.ParseResponse(frame, key)
	if err != nil {
		return fmt.Errorf("qqlogin: parse frame: %w", err)
	}

	cmd.Printf("cmd=%d seq=%d sub_cmd=%d blocks=%d\n", resp.Cmd, resp.Seq, resp.SubCmd, len(resp.Blocks))
	byID := tlv.ByID(resp.Blocks)
	for id, blk := range byID {
		cmd.Printf("  0x%04x: %d bytes\n", id, len(blk.Body))
	}
	return nil
}
