package retrieval

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/errgroup"

	"github.com/dkoraitest/consultant-copilot/internal/logger"
	"github.com/dkoraitest/consultant-copilot/internal/types"
	"github.com/dkoraitest/consultant-copilot/internal/types/interfaces"
)

const generationDeadline = 60 * time.Second

// keywordMergeLimit bounds how many keyword-index hits are folded into the
// chat cascade's result set per question.
const keywordMergeLimit = 10

// systemPromptTemplate fixes the agent role: no invention, citations by
// meeting title/date or chat name, use every distinct source, answer in the
// question's language.
const systemPromptTemplate = `Ты — ассистент бизнес-консультанта. Отвечай на вопросы строго на основе предоставленных данных:
- Транскрипты встреч (записи разговоров)
- Переписка в Telegram (рабочие чаты с клиентами)
%s

ПРАВИЛА ОТВЕТА:
1. Давай КОНКРЕТНЫЕ ответы с деталями из источников:
   - Цитируй ключевые фразы участников (в кавычках)
   - Указывай даты встреч и сообщений
   - Перечисляй конкретные решения, договорённости, цифры, метрики
   - Называй имена участников, если они упоминаются
2. Структурируй ответ: используй нумерованные списки для перечислений
3. Для каждого тезиса указывай источник — встреча (название и дата) или Telegram-чат
4. Если информации недостаточно для полного ответа — честно скажи, чего не хватает
5. НЕ придумывай и НЕ додумывай информацию, которой нет в контексте
6. Отвечай на языке вопроса
7. Используй информацию из ВСЕХ предоставленных источников, не ограничивайся 1-2`

const userPromptTemplate = `Контекст из источников:

%s

---

Вопрос: %s

Дай подробный ответ с конкретными деталями:`

// Engine answers questions against the indexed meeting and chat corpora.
type Engine struct {
	store    interfaces.Store
	embedder interfaces.Embedder
	model    interfaces.GenerativeModel
	keywords interfaces.KeywordIndex // optional, may be nil
	settings interfaces.SettingCache // optional, may be nil
	pool     *ants.Pool
}

// New builds a retrieval Engine. pool bounds the concurrent meeting/chat
// cascade fan-out and is shared by all requests; keywords may be nil to disable the
// secondary keyword retriever; settings may be nil to always read tunable
// overrides straight from the store.
func New(store interfaces.Store, embedder interfaces.Embedder, model interfaces.GenerativeModel,
	keywords interfaces.KeywordIndex, settings interfaces.SettingCache, pool *ants.Pool,
) *Engine {
	return &Engine{store: store, embedder: embedder, model: model, keywords: keywords, settings: settings, pool: pool}
}

// Ask answers a free-form question against the meeting and, optionally, chat
// corpora. clientID restricts the meeting search to one client.
func (e *Engine) Ask(ctx context.Context, question string, clientID *string, searchChats bool) (*types.AskResult, error) {
	log := logger.GetLogger(ctx).WithField("component", "retrieval")

	titles, err := e.store.ListMeetingTitles(ctx)
	if err != nil {
		return nil, err
	}
	titleFilter := InferTitleFilter(titles, question)
	if titleFilter != nil {
		log.Infof("auto-detected meeting client filter: %s", string(*titleFilter))
	}

	var chatClientFilter *types.ClientNameFilter
	if searchChats {
		chatNames, err := e.store.ListChatClientNames(ctx)
		if err != nil {
			return nil, err
		}
		chatClientFilter = InferClientNameFilter(chatNames, question)
		if chatClientFilter != nil {
			log.Infof("auto-detected telegram client filter: %s", string(*chatClientFilter))
		}
	}

	dateRange := ParseDateRange(question, time.Now())
	if dateRange != nil {
		log.Infof("auto-detected date range: %s (%s - %s)", dateRange.Description, dateRange.Start, dateRange.End)
	}

	vectors, err := e.embedder.Embed(ctx, []string{question})
	if err != nil {
		return nil, err
	}
	queryVector := vectors[0]

	maxPerGroupOverride, _ := resolveSettingInt(ctx, e.settings, e.store, types.SettingMaxPerGroupMeeting)

	var meetingHits []types.MeetingHit
	var chatHits []types.ChatHit

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return e.submitToPool(func() error {
			var err error
			meetingHits, err = searchMeetingsCascaded(
				gctx, e.store, queryVector, clientID, titleFilter, dateRange, maxPerGroupOverride)
			return err
		})
	})
	if searchChats {
		g.Go(func() error {
			return e.submitToPool(func() error {
				var err error
				chatHits, err = searchChatsCascaded(gctx, e.store, queryVector, chatClientFilter, dateRange)
				return err
			})
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if searchChats && e.keywords != nil {
		keywordHits, err := e.mergeKeywordHits(ctx, question, queryVector, chatHits)
		if err != nil {
			log.Warnf("keyword index merge failed, continuing with vector-only chat hits: %v", err)
		} else {
			chatHits = keywordHits
		}
	}

	if len(meetingHits) == 0 && len(chatHits) == 0 {
		return &types.AskResult{Answer: apologyAnswer}, nil
	}

	if len(meetingHits) > 0 {
		distinct := map[string]bool{}
		for _, h := range meetingHits {
			distinct[h.MeetingID] = true
		}
		log.Infof("meeting search: %d chunks from %d meetings", len(meetingHits), len(distinct))
	}
	if len(chatHits) > 0 {
		distinct := map[string]bool{}
		for _, h := range chatHits {
			distinct[h.ChatTitle] = true
		}
		log.Infof("telegram search: %d messages from %d chats", len(chatHits), len(distinct))
	}

	assembledContext := formatCombinedContext(meetingHits, chatHits)

	var filterNote strings.Builder
	clientName := ""
	if titleFilter != nil {
		clientName = string(*titleFilter)
	} else if chatClientFilter != nil {
		clientName = string(*chatClientFilter)
	}
	if clientName != "" {
		filterNote.WriteString("\nВажно: пользователь спрашивает конкретно про клиента/компанию «" + clientName + "». Фокусируйся ТОЛЬКО на информации об этом клиенте.")
	}
	if dateRange != nil {
		filterNote.WriteString("\nПользователь спрашивает про период: " + dateRange.Description + ". Учитывай только информацию за этот период.")
	}

	genCtx, cancel := context.WithTimeout(ctx, generationDeadline)
	defer cancel()

	turns := []interfaces.ChatTurn{
		{Role: "system", Content: e.systemPrompt(ctx, filterNote.String())},
		{Role: "user", Content: fmt.Sprintf(userPromptTemplate, assembledContext, question)},
	}
	answer, err := e.model.Generate(genCtx, turns)
	if err != nil {
		return nil, err
	}

	return &types.AskResult{
		Answer:         answer,
		MeetingSources: meetingSources(meetingHits),
		ChatSources:    chatSources(chatHits),
	}, nil
}

// submitToPool runs fn on the bounded ants pool, falling back to running it
// on the calling goroutine if the pool has no free worker slot and rejects
// the submission outright.
func (e *Engine) submitToPool(fn func() error) error {
	result := make(chan error, 1)
	if err := e.pool.Submit(func() { result <- fn() }); err != nil {
		return fn()
	}
	return <-result
}

// mergeKeywordHits folds the configured keyword index's chat hits into the
// vector cascade's result set, deduplicating by message id: a message the
// vector cascade already found keeps its vector row, and the remaining
// keyword hits are resolved and appended after the vector hits.
func (e *Engine) mergeKeywordHits(
	ctx context.Context, question string, queryVector []float32, chatHits []types.ChatHit,
) ([]types.ChatHit, error) {
	ids, err := e.keywords.SearchChats(ctx, question, keywordMergeLimit)
	if err != nil {
		return nil, fmt.Errorf("keyword search chats: %w", err)
	}
	if len(ids) == 0 {
		return chatHits, nil
	}

	byID := make(map[string]types.ChatHit, len(chatHits))
	for _, h := range chatHits {
		byID[h.MessageID] = h
	}

	var missing []string
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return chatHits, nil
	}

	resolved, err := e.store.GetChatHitsByMessageIDs(ctx, missing, queryVector)
	if err != nil {
		return nil, fmt.Errorf("resolve keyword chat hits: %w", err)
	}

	merged := append([]types.ChatHit(nil), chatHits...)
	for _, h := range resolved {
		if _, ok := byID[h.MessageID]; ok {
			continue
		}
		byID[h.MessageID] = h
		merged = append(merged, h)
	}
	return merged, nil
}

// GetMeetingContext loads up to the first 10 indexed chunks of a meeting in
// chunk_index order and poses a free-form question against that context
// alone.
func (e *Engine) GetMeetingContext(ctx context.Context, meetingID, question string) (string, error) {
	chunks, err := e.store.GetMeetingChunksInOrder(ctx, meetingID, 10)
	if err != nil {
		return "", err
	}
	if len(chunks) == 0 {
		return "Эта встреча не проиндексирована.", nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.ChunkText
	}
	assembledContext := strings.Join(texts, "\n\n")

	genCtx, cancel := context.WithTimeout(ctx, generationDeadline)
	defer cancel()

	turns := []interfaces.ChatTurn{
		{Role: "system", Content: e.systemPrompt(ctx, "")},
		{Role: "user", Content: fmt.Sprintf(userPromptTemplate, assembledContext, question)},
	}
	return e.model.Generate(genCtx, turns)
}
