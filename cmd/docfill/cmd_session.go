package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"docfill/internal/remote"
	"docfill/internal/session"
)

var downloadOut string

// healthCmd checks the assistant service
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the assistant service is reachable",
	Args:  cobra.NoArgs,
	RunE:  runHealth,
}

// uploadCmd uploads a template without starting the UI
var uploadCmd = &cobra.Command{
	Use:   "upload [document.docx]",
	Short: "Upload a document and list its placeholders",
	Long: `Uploads a .docx template, starts a session and prints the placeholders the
service detected. The session id can be used by other clients of the service.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

// downloadCmd fetches a generated document
var downloadCmd = &cobra.Command{
	Use:   "download [filename]",
	Short: "Download a generated document by filename",
	Args:  cobra.ExactArgs(1),
	RunE:  runDownload,
}

func newClient() *remote.Client {
	return remote.New(remote.Config{BaseURL: cfg.API.BaseURL, Timeout: cfg.GetTimeout()})
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func runHealth(cmd *cobra.Command, args []string) error {
	client := newClient()
	defer client.Close()

	h, err := client.Health(commandContext(cmd))
	if err != nil {
		logger.Error("Health check failed", zap.String("url", client.BaseURL()), zap.Error(err))
		return fmt.Errorf("service unreachable at %s: %w", client.BaseURL(), err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %s\n", client.BaseURL(), h.Status)
	if h.Service != "" {
		fmt.Fprintf(out, "service: %s %s\n", h.Service, h.Version)
	}
	return nil
}

func runUpload(cmd *cobra.Command, args []string) error {
	client := newClient()
	defer client.Close()

	logger.Info("Uploading document", zap.String("path", args[0]))
	resp, err := client.Upload(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("%s: %w", remote.DisplayMessage(err, remote.FallbackUpload), err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "session:  %s\n", resp.SessionID)
	fmt.Fprintf(out, "document: %s\n", resp.Filename)
	fmt.Fprintf(out, "fields:   %d\n\n", len(resp.Placeholders))

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tFIELD\tIDENTITY\tTYPE")
	for i, p := range resp.Placeholders {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, p.Label(), p.Identity(), p.Type)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if resp.InitialMessage != "" {
		fmt.Fprintf(out, "\n%s\n", resp.InitialMessage)
	}
	return nil
}

func runDownload(cmd *cobra.Command, args []string) error {
	filename := session.DownloadFilename(args[0])

	dest := downloadOut
	if dest == "" {
		ws, err := resolveWorkspace()
		if err != nil {
			return err
		}
		dest = filepath.Join(ws, filename)
	}

	client := newClient()
	defer client.Close()

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}
	n, err := client.Download(commandContext(cmd), filename, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dest)
		return fmt.Errorf("%s: %w", remote.DisplayMessage(err, remote.FallbackDownload), err)
	}

	logger.Info("Downloaded document", zap.String("path", dest), zap.Int64("bytes", n))
	fmt.Fprintf(cmd.OutOrStdout(), "saved %s (%d bytes)\n", dest, n)
	return nil
}
