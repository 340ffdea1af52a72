package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tencentrelay/qqlogin/internal/config"
	"github.com/tencentrelay/qqlogin/internal/crypto"
	"github.com/tencentrelay/qqlogin/internal/logging"
	"github.com/tencentrelay/qqlogin/internal/metrics"
	"github.com/tencentrelay/qqlogin/internal/session"
	"github.com/tencentrelay/qqlogin/internal/transport"
)

func loginCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against the gateway using a YAML session config",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "qqlogin.yaml", "path to the session configuration file")
	return cmd
}

func runLogin(cmd *cobra.Command, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("qqlogin: %w", err)
	}
	logger := logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	m := metrics.Default()

	passwordMD5, err := resolvePasswordDigest(cmd, cfg)
	if err != nil {
		return err
	}

	device := session.DeviceInfo{
		IMEI:        cfg.Device.IMEI,
		AndroidID:   cfg.Device.AndroidID,
		WifiMAC:     cfg.Device.WiFiMAC,
		SimOperator: cfg.Device.SimOperator,
		APN:         cfg.Device.APN,
		NetworkType: 1,
		DisplayName: "Android",
		DeviceName:  "PCRT00",
		OSVersion:   "9",
	}

	ctx, err := session.NewContext(cfg.Account.Uin, passwordMD5, device)
	if err != nil {
		return fmt.Errorf("qqlogin: build session context: %w", err)
	}
	ctx.AppClientVersion = cfg.Client.AppClientVersion
	ctx.SubAppID = cfg.Client.SubAppID

	sock := transport.NewTCPSocket(cfg.Gateway.DialTimeout)
	sess := session.New(ctx, sock, logger)

	deadline := cfg.Gateway.DialTimeout * 3
	if deadline <= 0 {
		deadline = 30 * time.Second
	}
	loginCtx, cancel := context.WithTimeout(context.Background(), deadline)
	defer cancel()

	start := time.Now()
	prompt, err := sess.Login(loginCtx, cfg.Gateway.Host, cfg.Gateway.Port)
	elapsed := time.Since(start)
	m.RecordLoginDuration(elapsed.Seconds())

	if err != nil {
		recordLoginFailure(m, err)
		return fmt.Errorf("qqlogin: login failed after %s: %w", elapsed, err)
	}
	if prompt != nil {
		m.RecordLoginAttempt(metrics.ResultCaptcha)
		cmd.Printf("captcha required: %dx%d image, %s\n", prompt.Width, prompt.Height, humanize.Bytes(uint64(len(prompt.Image))))
		return nil
	}

	m.RecordLoginAttempt(metrics.ResultSuccess)
	cmd.Printf("login succeeded in %s (state=%s)\n", elapsed, sess.State())
	return nil
}

func recordLoginFailure(m *metrics.Metrics, err error) {
	switch err.(type) {
	case *session.TimeoutError:
		m.RecordLoginAttempt(metrics.ResultTimeout)
	case *session.TransportError:
		m.RecordLoginAttempt(metrics.ResultTransportError)
	case *session.LoginRejectedError:
		m.RecordLoginAttempt(metrics.ResultRejected)
	default:
		m.RecordLoginAttempt(metrics.ResultRejected)
	}
}

func resolvePasswordDigest(cmd *cobra.Command, cfg *config.Config) ([16]byte, error) {
	if cfg.Account.PasswordMD5Hex != "" {
		return cfg.Account.PasswordMD5()
	}
	cmd.Print("password: ")
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	cmd.Println()
	if err != nil {
		return [16]byte{}, fmt.Errorf("qqlogin: read password: %w", err)
	}
	return crypto.MD5(pw), nil
}
