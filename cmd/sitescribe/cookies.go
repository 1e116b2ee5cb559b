package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/chromedp/chromedp"
	"github.com/spf13/cobra"

	"github.com/nao1215/sitescribe/internal/config"
	"github.com/nao1215/sitescribe/internal/cookie"
	"github.com/nao1215/sitescribe/internal/fetch"
	"github.com/nao1215/sitescribe/internal/log"
)

// defaultJarFile is the default cookie-jar output path.
const defaultJarFile = "session.json"

// NewCookiesCmd creates the cookies command.
// It opens a visible browser so the user can log in by hand, then saves
// the session cookies for later authenticated crawls.
func NewCookiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cookies <url>",
		Short: "Capture login cookies for authenticated crawling",
		Long: `Cookies opens a visible browser window at the given URL so you can log in
manually. After you confirm in the terminal, the browser's cookies are
saved to a JSON jar file.

Pass the jar to later crawls with --cookies to crawl pages behind a login:

  sitescribe cookies https://docs.example.com/login
  sitescribe crawl --render --cookies session.json https://docs.example.com/

The jar contains live session credentials, so the file is created with
owner-only permissions. Treat it like a password.`,
		Args: cobra.ExactArgs(1),
		RunE: runCookiesCmd,
	}

	cmd.Flags().StringP("output", "o", defaultJarFile,
		"Output path for the cookie jar file")

	return cmd
}

// runCookiesCmd executes the cookies command.
func runCookiesCmd(cmd *cobra.Command, args []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	logger := log.NewSecureLogger(os.Stderr, getVerboseFlag(cmd))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	return captureCookies(ctx, args[0], outputPath, cmd, logger)
}

// captureCookies opens a headful browser at url, waits for the user to
// log in, and writes the session's cookies to outputPath.
func captureCookies(ctx context.Context, url, outputPath string, cmd *cobra.Command, logger *slog.Logger) error {
	fmt.Println("Opening browser window...")

	session, err := fetch.NewSession(ctx,
		fetch.WithHeadful(),
		fetch.WithSessionUserAgent(config.DefaultUserAgent),
	)
	if err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}
	defer session.Close()

	if err := chromedp.Run(session.Context(), chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to open %s: %w", url, err)
	}

	fmt.Printf("Log in to %s in the browser window.\n", url)
	fmt.Print("Press Enter here when you are done... ")

	if err := waitForEnter(ctx, cmd.InOrStdin()); err != nil {
		return err
	}

	cookies, err := session.Cookies()
	if err != nil {
		return fmt.Errorf("failed to read cookies: %w", err)
	}

	jar := cookie.FromNetworkCookies(cookies)
	if len(jar) == 0 {
		fmt.Println("\nNo cookies were set; nothing to save.")
		return nil
	}

	if err := cookie.WriteJar(outputPath, jar); err != nil {
		return err
	}

	logger.Info("cookie jar saved", "path", outputPath, "cookies", len(jar))
	fmt.Printf("\nSaved %d cookies to %s\n", len(jar), outputPath)
	fmt.Printf("\nUse the jar with:\n  sitescribe crawl --render --cookies %s <seed-url>\n", outputPath)

	return nil
}

// waitForEnter blocks until the user presses Enter or the context is
// cancelled (e.g. by Ctrl-C while the browser is open).
func waitForEnter(ctx context.Context, in io.Reader) error {
	done := make(chan error, 1)
	go func() {
		_, err := bufio.NewReader(in).ReadString('\n')
		done <- err
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		return nil
	}
}
