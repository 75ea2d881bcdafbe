package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"

	"github.com/reefbound/diveagent/src/anthropic"
	"github.com/reefbound/diveagent/src/controller"
	"github.com/reefbound/diveagent/src/diveagent"
	"github.com/reefbound/diveagent/src/diveagent/tools"
	"github.com/reefbound/diveagent/src/pipeline"
	"github.com/reefbound/diveagent/src/session"
)

var (
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	promptStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	noticeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Italic(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// ChatCmd is the interactive chat command.
type ChatCmd struct {
	Session string `help:"Link a processing session id at startup"`
}

func (c *ChatCmd) Run(kctx *kong.Context, cli *CLI) error {
	logger := createCLILogger(cli.LogLevel)

	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}

	objects, err := openStore(cfg)
	if err != nil {
		return err
	}

	sess := session.New()
	toolbox, err := tools.NewToolbox(sess, objects, logger)
	if err != nil {
		return err
	}

	model := anthropic.NewClient(anthropic.Config{
		APIKey:    cfg.API.APIKey,
		BaseURL:   cfg.API.BaseURL,
		Model:     cfg.API.Model,
		MaxTokens: cfg.API.MaxTokens,
		Logger:    logger,
	})

	ctrl, err := controller.New(controller.Config{
		Model:       model,
		Toolbox:     toolbox,
		Logger:      logger,
		MaxAttempts: cfg.Chat.MaxAttempts,
		BaseDelay:   time.Duration(cfg.Chat.BaseDelayMS) * time.Millisecond,
	})
	if err != nil {
		return err
	}

	poller := pipeline.NewPoller(objects, logger)
	poller.Interval = time.Duration(cfg.Pipeline.PollIntervalMS) * time.Millisecond
	poller.Timeout = time.Duration(cfg.Pipeline.TimeoutMS) * time.Millisecond

	ctx := context.Background()

	reply, err := ctrl.StartChat(ctx, sess)
	if err != nil {
		return err
	}
	printAssistant(reply)

	if c.Session != "" {
		linkSession(ctx, ctrl, poller, sess, c.Session)
	}

	fmt.Println(noticeStyle.Render("Commands: /link <session-id>, /state, /quit"))

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(promptStyle.Render("you> "))
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case line == "/quit" || line == "/exit":
			return nil
		case line == "/state":
			printState(sess)
			continue
		case strings.HasPrefix(line, "/link "):
			id := strings.TrimSpace(strings.TrimPrefix(line, "/link "))
			if id == "" {
				fmt.Println(errorStyle.Render("usage: /link <session-id>"))
				continue
			}
			linkSession(ctx, ctrl, poller, sess, id)
			continue
		}

		reply, err := ctrl.Turn(ctx, sess, line)
		if err != nil {
			fmt.Println(errorStyle.Render(err.Error()))
			continue
		}
		printAssistant(reply)
	}
	return scanner.Err()
}

// linkSession attaches a processing session, notifies the assistant and
// waits for the pipeline's metadata document before reloading the record.
func linkSession(ctx context.Context, ctrl *controller.Controller, poller *pipeline.Poller, sess *session.Session, id string) {
	sess.Link(id)

	reply, err := ctrl.Turn(ctx, sess, diveagent.EventVideoUploaded)
	if err != nil {
		fmt.Println(errorStyle.Render(err.Error()))
		return
	}
	printAssistant(reply)

	fmt.Println(noticeStyle.Render("⏳ Waiting for the video to be processed..."))
	meta, err := poller.WaitForMetadata(ctx, id)
	if err != nil {
		fmt.Println(errorStyle.Render("⏳ Timed out waiting for the session metadata. Check that the video was processed."))
		return
	}
	sess.SetRecord(meta.Record())
	fmt.Println(noticeStyle.Render("✅ The dive video has been processed."))
}

func printAssistant(reply string) {
	fmt.Println(assistantStyle.Render("🤿 " + reply))
}

func printState(sess *session.Session) {
	rec := sess.Record()
	number := "-"
	if rec.DiveNumber != nil {
		number = fmt.Sprintf("%d", *rec.DiveNumber)
	}
	fmt.Println(noticeStyle.Render(fmt.Sprintf(
		"session=%s dive_session=%s date=%s number=%s location=%s messages=%d",
		sess.ID, orDash(sess.DiveSessionID()), orDash(rec.DiveDate), number,
		orDash(rec.DiveLocation), sess.Len())))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
