package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"sheet_image_gen/internal/browser"
	"sheet_image_gen/internal/chat"
	"sheet_image_gen/internal/config"
	"sheet_image_gen/internal/embed"
	"sheet_image_gen/internal/retry"
	"sheet_image_gen/internal/sheets"

	"github.com/rs/zerolog/log"
	"google.golang.org/api/googleapi"
)

// ProcessRows generates an image for every row that has no URL yet. Rows that
// already have one are passed through untouched. Every row contributes exactly
// one entry to the returned URL list, so a failure leaves an empty placeholder.
// Only context cancellation stops the loop early.
func ProcessRows(ctx context.Context, sheet PromptSheet, generator ImageGenerator, rows []sheets.PromptRow) (*RunState, error) {
	state := &RunState{
		Rows: rows,
		URLs: make([]string, 0, len(rows)),
	}
	state.Summary.Total = len(rows)

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return state, err
		}

		if row.ExistingURL != "" {
			log.Info().Int("row", row.Row).Msg("Row already has a URL, skipping")
			state.add(row.ExistingURL)
			state.Summary.PassedOn++
			continue
		}
		if row.Prompt == "" {
			log.Warn().Int("row", row.Row).Msg("Row has no prompt, skipping")
			state.add("")
			state.Summary.Failed++
			continue
		}

		log.Info().Int("row", row.Row).Str("prompt", row.Prompt).Msg("Submitting prompt")
		url, err := generator.Generate(ctx, row.Prompt)
		if err != nil {
			if ctx.Err() != nil {
				return state, ctx.Err()
			}
			log.Error().Err(err).Int("row", row.Row).Msg("Failed to generate image, leaving row empty")
			state.add("")
			state.Summary.Failed++
			continue
		}

		state.add(url)
		state.Summary.Generated++
		log.Info().Int("row", row.Row).Str("url", url).Msg("Generated image")

		if err := sheet.WriteResultURL(ctx, row.Row, url); err != nil {
			log.Error().Err(err).Int("row", row.Row).Msg("Failed to write URL to sheet")
		}
		log.Debug().Strs("urls", state.URLs).Msg("Result URLs so far")
	}

	return state, nil
}

// ReadRows reads the prompt rows, retrying transient API failures.
func ReadRows(ctx context.Context, sheet PromptSheet) ([]sheets.PromptRow, error) {
	return retry.WithRetry(ctx, config.DefaultResilienceConfig.SheetRead, func(ctx context.Context) ([]sheets.PromptRow, error) {
		rows, err := sheet.ReadPromptRows(ctx)
		if err != nil && !isTransient(err) {
			return nil, retry.Permanent(err)
		}
		return rows, err
	})
}

func isTransient(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusTooManyRequests || gerr.Code >= 500
	}
	return true
}

// Embed opens the sheet in a new tab, closes the chat tab and embeds the images.
func Embed(ctx context.Context, session *browser.Session, chatPage browser.Page, cfg *Config, urls []string) error {
	sheetPage, err := session.NewPage()
	if err != nil {
		return err
	}
	if err := chatPage.Close(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to close chat page")
	}

	sheetURL := cfg.SheetConfig().URL()
	log.Info().Str("url", sheetURL).Msg("Opening spreadsheet")
	if err := sheetPage.Navigate(ctx, sheetURL); err != nil {
		return err
	}

	return embed.NewEmbedder(sheetPage, cfg.EmbedConfig(), embed.DefaultSelectors).EmbedAll(ctx, urls)
}

// Run is the whole workflow: read rows, generate missing images, write them back,
// embed them and report.
func Run(ctx context.Context, cfg *Config) error {
	sheetsClient, err := sheets.NewClient(ctx, cfg.CredentialsFile)
	if err != nil {
		return fmt.Errorf("google sheets auth: %w", err)
	}
	sheet := sheets.NewSheet(sheetsClient, cfg.SheetConfig())
	notifier := InitializeNotificationClient(cfg)

	rows, err := ReadRows(ctx, sheet)
	if err != nil {
		return fmt.Errorf("read prompts: %w", err)
	}
	if len(rows) == 0 {
		log.Info().Str("range", cfg.SheetConfig().PromptRange()).Msg("No prompts found")
		return nil
	}
	log.Info().Int("rows", len(rows)).Msg("Found rows. Will process rows where the result column is empty.")

	session, err := retry.WithRetry(ctx, config.DefaultResilienceConfig.BrowserAttach, func(context.Context) (*browser.Session, error) {
		// the session must outlive this attempt, so it hangs off ctx
		return browser.Attach(ctx, cfg.CDPURL)
	})
	if err != nil {
		return err
	}
	defer session.Close()

	chatPage, err := session.FirstPage()
	if err != nil {
		return err
	}
	if cfg.ChannelURL == "" {
		log.Warn().Msg("No CHANNEL_URL set, opening the app root. Navigate to the image channel manually.")
	}
	log.Info().Str("url", cfg.ChatURL()).Msg("Opening channel")
	if err := chatPage.Navigate(ctx, cfg.ChatURL()); err != nil {
		return err
	}

	generator := chat.NewGenerator(chatPage, chat.NewPoller(cfg.PollInterval, cfg.PollTimeout), chat.DefaultSelectors)
	state, err := ProcessRows(ctx, sheet, generator, rows)
	if err != nil {
		notifier.NotifyRunSummary(context.WithoutCancel(ctx), state.Summary)
		return err
	}

	if cfg.EmbedImages {
		if err := Embed(ctx, session, chatPage, cfg, state.URLs); err != nil {
			log.Error().Err(err).Msg("Embedding images stopped early")
			state.Summary.EmbedFailed = true
		} else {
			state.Summary.Embedded = true
		}
	}

	notifier.NotifyRunSummary(ctx, state.Summary)
	log.Info().
		Int("generated", state.Summary.Generated).
		Int("passed_on", state.Summary.PassedOn).
		Int("failed", state.Summary.Failed).
		Msg("All done")
	return nil
}
