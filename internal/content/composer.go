// Package content composes deliverable messages out of the generation,
// parsing and persistence stages.
package content

import (
	"context"
	"time"

	"github.com/minssan9/aviation-bot/internal/provider"
	"github.com/minssan9/aviation-bot/internal/quiz"
	"github.com/minssan9/aviation-bot/internal/store"
	"github.com/minssan9/aviation-bot/internal/topic"
	logx "github.com/minssan9/aviation-bot/pkg/logx"
)

// Composer produces validated quiz records and rendered messages.
// Generation failures and parse failures surface to the caller; persistence
// failures are logged and swallowed, a generated quiz is still worth
// delivering when only the bookkeeping write failed.
type Composer struct {
	orc    *provider.Orchestrator
	store  *store.Store
	topics topic.Source
	log    logx.Logger
}

func NewComposer(orc *provider.Orchestrator, st *store.Store, topics topic.Source, log logx.Logger) *Composer {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Composer{orc: orc, store: st, topics: topics, log: log}
}

// Quiz generates, parses and persists one quiz for the given subject.
func (c *Composer) Quiz(ctx context.Context, topicName, knowledgeArea string) (*quiz.Record, error) {
	gen, err := c.orc.Generate(ctx, topicName, knowledgeArea)
	if err != nil {
		return nil, err
	}

	rec, err := quiz.Parse(gen.RawText)
	if err != nil {
		c.log.Warn("generated text rejected",
			logx.String("provider", gen.ProviderName),
			logx.String("topic", topicName),
			logx.Err(err))
		return nil, err
	}
	rec.Topic = topicName
	rec.KnowledgeArea = knowledgeArea
	rec.Provider = gen.ProviderName

	if c.store != nil {
		if _, err := c.store.SaveQuiz(ctx, rec); err != nil {
			// Persistence trouble must not cost subscribers their message.
			c.log.Warn("quiz save failed", logx.String("topic", topicName), logx.Err(err))
		}
	}
	return rec, nil
}

// SlotMessage resolves the slot's subject and returns the rendered
// broadcast text for it.
func (c *Composer) SlotMessage(ctx context.Context, slotName, topicOverride string) (string, error) {
	sel := c.topics.Pick(slotName, time.Now())
	if topicOverride != "" {
		sel.Topic = topicOverride
	}
	rec, err := c.Quiz(ctx, sel.Topic, sel.KnowledgeArea)
	if err != nil {
		return "", err
	}
	return quiz.RenderBroadcast(slotName, rec), nil
}

// AdHocQuiz serves the /quiz command. With an empty topic the daily
// selection is used; otherwise the user's topic doubles as knowledge area.
func (c *Composer) AdHocQuiz(ctx context.Context, topicName string) (string, error) {
	sel := c.topics.Pick("adhoc", time.Now())
	if topicName != "" {
		sel = topic.Selection{Topic: topicName, KnowledgeArea: topicName}
	}
	rec, err := c.Quiz(ctx, sel.Topic, sel.KnowledgeArea)
	if err != nil {
		return "", err
	}
	return quiz.RenderQuiz(rec), nil
}

// ProbeAll reports provider availability for the /status command.
func (c *Composer) ProbeAll(ctx context.Context) map[string]bool {
	return c.orc.ProbeAll(ctx)
}
