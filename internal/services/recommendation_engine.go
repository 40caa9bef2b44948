package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"

	"aneka-keramik/internal/constants"
	"aneka-keramik/internal/models"
	"aneka-keramik/internal/utils"
	"aneka-keramik/pkg/llm"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type EngineState string

const (
	StateAwaitingModel   EngineState = "AWAITING_MODEL"
	StateToolRequested   EngineState = "TOOL_REQUESTED"
	StateBroadQueryRetry EngineState = "BROAD_QUERY_RETRY"
	StateExecutingSearch EngineState = "EXECUTING_SEARCH"
	StateDone            EngineState = "DONE"
	StateDoneEmpty       EngineState = "DONE_EMPTY"
	StateDoneGuarded     EngineState = "DONE_GUARDED"
)

type RecommendationResult struct {
	Message *string
	// Products is nil when no search ran and empty when a search matched nothing
	Products        []models.ProductResponse
	UpdatedMessages []llm.Message
	State           EngineState
}

type RecommendationEngine interface {
	Recommend(ctx context.Context, prompt string, history []llm.Message) (*RecommendationResult, error)
}

type EngineOption func(*recommendationEngine)

// WithFallbackPicker replaces the random choice of the no-results message; pick returns an index in [0, n).
func WithFallbackPicker(pick func(n int) int) EngineOption {
	return func(e *recommendationEngine) {
		e.pick = pick
	}
}

type recommendationEngine struct {
	llmClient llm.Client
	catalog   CatalogService
	pick      func(n int) int
	logger    *logrus.Entry
}

func NewRecommendationEngine(llmClient llm.Client, catalog CatalogService, opts ...EngineOption) RecommendationEngine {
	engine := &recommendationEngine{
		llmClient: llmClient,
		catalog:   catalog,
		pick:      rand.Intn,
		logger:    logrus.WithField("component", "recommendation_engine"),
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// turn is the state of a single Recommend call.
type turn struct {
	engine   *recommendationEngine
	ctx      context.Context
	tools    []llm.Tool
	messages []llm.Message
	calls    int
	logger   *logrus.Entry
}

func (t *turn) callModel() (*llm.ChatResult, error) {
	if t.calls >= constants.MaxModelCallsPerTurn {
		return nil, ErrToolLoopExceeded
	}
	t.calls++
	t.logger.WithFields(logrus.Fields{"state": StateAwaitingModel, "call": t.calls}).Debug("Calling model")

	response, err := t.engine.llmClient.Chat(t.ctx, t.messages, constants.SystemInstruction, t.tools)
	if err != nil {
		return nil, fmt.Errorf("model call %d failed: %w", t.calls, err)
	}
	t.messages = append(t.messages, response.RawMessage)
	return response, nil
}

func (t *turn) finish(state EngineState, message string, products []models.ProductResponse) *RecommendationResult {
	t.logger.WithFields(logrus.Fields{"state": state, "model_calls": t.calls, "products": len(products)}).Info("Recommendation finished")
	result := &RecommendationResult{
		Products:        products,
		UpdatedMessages: t.messages,
		State:           state,
	}
	if message != "" {
		result.Message = utils.ToStringPtr(message)
	}
	return result
}

// finishWithoutModel closes a pending tool call with status and a fixed assistant reply,
// so the stored history never ends on an unanswered tool call.
func (t *turn) finishWithoutModel(state EngineState, status string, message string) *RecommendationResult {
	t.messages = append(t.messages,
		llm.ToolResultMessage(constants.ProductToolName, map[string]interface{}{
			"status":   status,
			"products": []interface{}{},
		}),
		llm.AssistantText(message),
	)
	return t.finish(state, message, []models.ProductResponse{})
}

func (e *recommendationEngine) Recommend(ctx context.Context, prompt string, history []llm.Message) (*RecommendationResult, error) {
	tool, err := e.buildProductTool(ctx)
	if err != nil {
		return nil, err
	}

	messages := make([]llm.Message, 0, len(history)+4)
	messages = append(messages, history...)
	messages = append(messages, llm.UserMessage(prompt))

	t := &turn{
		engine:   e,
		ctx:      ctx,
		tools:    []llm.Tool{tool},
		messages: messages,
		logger:   e.logger.WithField("provider", e.llmClient.GetModelInfo().Provider),
	}

	var products []models.ProductResponse

	response, err := t.callModel()
	if err != nil {
		return nil, err
	}

	for response.ToolCall != nil {
		call := response.ToolCall
		t.logger.WithFields(logrus.Fields{"state": StateToolRequested, "tool": call.Name}).Debug("Model requested a tool")

		if call.Name != constants.ProductToolName {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTool, call.Name)
		}

		if len(call.Arguments) == 0 {
			t.logger.Warn("Model called the product tool without arguments")
			return t.finishWithoutModel(StateDoneGuarded, constants.ToolStatusEmptyArguments, constants.EmptyArgumentsMessage), nil
		}

		if isBroadQuery(call.Arguments) {
			t.logger.WithField("state", StateBroadQueryRetry).Warn("Query too broad, asking the model to narrow it down")
			t.messages = append(t.messages, llm.ToolResultMessage(call.Name, map[string]interface{}{
				"status":   constants.ToolStatusQueryTooBroad,
				"products": []interface{}{},
			}))
			if response, err = t.callModel(); err != nil {
				return nil, err
			}
			continue
		}

		filters := filtersFromArguments(call.Arguments, t.logger)
		found, err := e.catalog.Search(ctx, ProductQuery{Filters: filters, Limit: constants.RecommendationSearchLimit})
		if err != nil {
			return nil, fmt.Errorf("product search failed: %w", err)
		}
		t.logger.WithFields(logrus.Fields{"state": StateExecutingSearch, "found": len(found)}).Info("Product search finished")

		if len(found) == 0 {
			message := constants.EmptyProductMessages[e.pick(len(constants.EmptyProductMessages))]
			return t.finishWithoutModel(StateDoneEmpty, constants.ToolStatusNoProducts, message), nil
		}

		products = found
		payload, err := toolPayload(constants.ToolStatusSuccess, found)
		if err != nil {
			return nil, err
		}
		t.messages = append(t.messages, llm.ToolResultMessage(call.Name, payload))
		if response, err = t.callModel(); err != nil {
			return nil, err
		}
	}

	return t.finish(StateDone, response.Text, products), nil
}

// toolPayload flattens a search result into plain JSON values, so the stored tool
// result carries the same camelCase keys before and after a round trip through Mongo.
func toolPayload(status string, products []models.ProductResponse) (map[string]interface{}, error) {
	raw, err := json.Marshal(map[string]interface{}{"status": status, "products": products})
	if err != nil {
		return nil, fmt.Errorf("failed to encode tool result: %w", err)
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode tool result: %w", err)
	}
	return payload, nil
}

// buildProductTool declares the search tool, with enums read live from the catalog.
func (e *recommendationEngine) buildProductTool(ctx context.Context) (llm.Tool, error) {
	fields := []string{
		"specification.design",
		"specification.texture",
		"specification.finishing",
		"specification.color",
		"recommended",
	}
	enums := make([][]string, len(fields))

	g, gctx := errgroup.WithContext(ctx)
	for i, field := range fields {
		g.Go(func() error {
			values, err := e.catalog.DistinctValues(gctx, field)
			if err != nil {
				return fmt.Errorf("failed to load %s values: %w", field, err)
			}
			enums[i] = values
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return llm.Tool{}, err
	}

	enumArray := func(values []string, description string) *llm.PropertySchema {
		return &llm.PropertySchema{
			Type:        llm.TypeArray,
			Items:       &llm.PropertySchema{Type: llm.TypeString, Enum: values},
			Description: description,
		}
	}

	return llm.Tool{
		Name:        constants.ProductToolName,
		Description: constants.ProductToolDescription,
		Parameters: llm.ToolParameters{
			Type: llm.TypeObject,
			Properties: map[string]*llm.PropertySchema{
				"design":    enumArray(enums[0], "Filter berdasarkan desain keramik, contoh: 'Modern', 'Minimalis'."),
				"texture":   enumArray(enums[1], "Filter berdasarkan tekstur permukaan keramik, contoh: 'Glossy', 'Matte'."),
				"finishing": enumArray(enums[2], "Filter berdasarkan finishing keramik, contoh: 'Polished', 'Unpolished'."),
				"color":     enumArray(enums[3], "Filter berdasarkan warna keramik, contoh: 'Putih', 'Abu-abu'."),
				"size": {
					Type: llm.TypeArray,
					Items: &llm.PropertySchema{
						Type: llm.TypeObject,
						Properties: map[string]*llm.PropertySchema{
							"width":  {Type: llm.TypeNumber, Description: "Lebar keramik dalam cm."},
							"height": {Type: llm.TypeNumber, Description: "Tinggi keramik dalam cm."},
						},
					},
					Description: "Filter berdasarkan ukuran keramik dalam sentimeter.",
				},
				"recommendedFor": enumArray(enums[4], "Filter berdasarkan area aplikasi, contoh: 'Kamar Mandi', 'Dapur'."),
				"price": {
					Type: llm.TypeObject,
					Properties: map[string]*llm.PropertySchema{
						"min": {Type: llm.TypeNumber, Description: "Harga minimal. jika tidak ditentukan maka default = 0"},
						"max": {Type: llm.TypeNumber, Description: "Harga maksimal. jika tidak ditentukan maka default = 999999999999"},
					},
					Description: "Filter berdasarkan harga.",
				},
			},
		},
	}, nil
}

// isBroadQuery reports whether the call carries a single descriptive filter and nothing else.
// Size and price alone are specific enough to search.
func isBroadQuery(args map[string]interface{}) bool {
	if len(args) != 1 {
		return false
	}
	for key := range args {
		for _, broad := range constants.BroadFilterKeys {
			if key == broad {
				return true
			}
		}
	}
	return false
}

// stringList decodes either a JSON string or an array of strings.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*l = nil
		} else {
			*l = stringList{single}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = many
	return nil
}

// sizeList decodes either one size object or an array of them.
type sizeList []models.Size

func (l *sizeList) UnmarshalJSON(data []byte) error {
	var many []models.Size
	if err := json.Unmarshal(data, &many); err == nil {
		*l = many
		return nil
	}
	var single models.Size
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*l = sizeList{single}
	return nil
}

// filtersFromArguments maps tool arguments onto catalog filters. Arguments that do not
// decode are dropped and logged rather than failing the turn.
func filtersFromArguments(args map[string]interface{}, logger *logrus.Entry) ProductFilters {
	var filters ProductFilters

	decode := func(key string, target interface{}) bool {
		value, ok := args[key]
		if !ok || value == nil {
			return false
		}
		raw, err := json.Marshal(value)
		if err == nil {
			err = json.Unmarshal(raw, target)
		}
		if err != nil {
			logger.WithError(err).WithField("argument", key).Warn("Ignoring malformed tool argument")
			return false
		}
		return true
	}

	lists := []struct {
		key    string
		target *[]string
	}{
		{"design", &filters.Design},
		{"texture", &filters.Texture},
		{"finishing", &filters.Finishing},
		{"color", &filters.Color},
		{"recommendedFor", &filters.Recommended},
	}
	for _, l := range lists {
		var values stringList
		if decode(l.key, &values) {
			*l.target = values
		}
	}

	var sizes sizeList
	if decode("size", &sizes) {
		filters.Size = sizes
	}
	var price PriceRange
	if decode("price", &price) && (price.Min != nil || price.Max != nil) {
		filters.Price = &price
	}
	return filters
}
