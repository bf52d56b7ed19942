// Package telegram implements the publish capability against the Telegram
// Bot API.
package telegram

import (
	"context"
	"fmt"
	"os"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/shouya/telegram-undelete/internal/config"
	"github.com/shouya/telegram-undelete/internal/publish"
)

// bot is one authorized publishing identity.
type bot struct {
	userID int64 // archived author this bot impersonates, 0 = fallback
	api    *tgbotapi.BotAPI
}

// Client publishes rendered payloads into a single destination chat,
// choosing a bot identity per archived author.
type Client struct {
	chatID int64
	bots   []bot
}

// NewClient authorizes every configured bot token (getMe) up front, so bad
// tokens fail the run at startup instead of poisoning the retry ledger.
func NewClient(chatID int64, bots []config.Bot, logger *zap.Logger) (*Client, error) {
	c := &Client{chatID: chatID}
	for _, b := range bots {
		api, err := tgbotapi.NewBotAPI(b.Token)
		if err != nil {
			return nil, fmt.Errorf("authorize bot: %w", err)
		}
		logger.Info("bot authorized",
			zap.String("username", api.Self.UserName),
			zap.Int64("impersonates", b.UserID),
		)
		c.bots = append(c.bots, bot{userID: b.UserID, api: api})
	}
	return c, nil
}

// Publish sends one payload and returns the new message id.
func (c *Client) Publish(ctx context.Context, p publish.Payload) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	api := pickBot(c.bots, p.AuthorID).api

	var msg tgbotapi.Chattable
	switch p.Kind {
	case publish.PayloadText:
		m := tgbotapi.NewMessage(c.chatID, p.Body)
		m.ReplyToMessageID = int(p.ReplyTo)
		msg = m
	case publish.PayloadPhoto:
		file, err := os.Open(p.FilePath)
		if err != nil {
			return 0, fmt.Errorf("open attachment: %w", err)
		}
		defer func() { _ = file.Close() }()
		m := tgbotapi.NewPhoto(c.chatID, tgbotapi.FileReader{Name: p.FileName, Reader: file})
		m.Caption = p.Body
		m.ReplyToMessageID = int(p.ReplyTo)
		msg = m
	case publish.PayloadDocument:
		file, err := os.Open(p.FilePath)
		if err != nil {
			return 0, fmt.Errorf("open attachment: %w", err)
		}
		defer func() { _ = file.Close() }()
		m := tgbotapi.NewDocument(c.chatID, tgbotapi.FileReader{Name: p.FileName, Reader: file})
		m.Caption = p.Body
		m.ReplyToMessageID = int(p.ReplyTo)
		msg = m
	default:
		return 0, fmt.Errorf("unknown payload kind %d", p.Kind)
	}

	sent, err := api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("telegram send: %w", err)
	}
	return int64(sent.MessageID), nil
}

// pickBot returns the identity matching the author, falling back to the
// default bot (userID 0), then to the first configured bot.
func pickBot(bots []bot, authorID int64) bot {
	var fallback *bot
	for i := range bots {
		if bots[i].userID == authorID {
			return bots[i]
		}
		if bots[i].userID == 0 && fallback == nil {
			fallback = &bots[i]
		}
	}
	if fallback != nil {
		return *fallback
	}
	return bots[0]
}
