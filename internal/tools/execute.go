package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

// decodeArgs parses a tool's JSON argument object into v and validates it.
// An empty argument payload is treated as {}.
func decodeArgs(raw json.RawMessage, v any) error {
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, v); err != nil {
			return fmt.Errorf("invalid JSON arguments: %w", err)
		}
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	return nil
}

type toolHandler func(ctx context.Context, args json.RawMessage) (any, error)

// Execute dispatches a tool call by name. Results are JSON-compatible values
// (maps and slices of decoded API responses).
func (p *Provider) Execute(ctx context.Context, name string, args json.RawMessage) (any, error) {
	handlers := map[string]toolHandler{
		ToolPrefix + "get_current_account":    p.execGetCurrentAccount,
		ToolPrefix + "list_subscriptions":     p.execListSubscriptions,
		ToolPrefix + "get_subscription":       p.execGetSubscription,
		ToolPrefix + "get_subscription_by_id": p.execGetSubscriptionByID,
		ToolPrefix + "list_databases":         p.execListDatabases,
		ToolPrefix + "get_database":           p.execGetDatabase,
		ToolPrefix + "get_database_by_name":   p.execGetDatabaseByName,
		ToolPrefix + "list_users":             p.execListUsers,
		ToolPrefix + "list_tasks":             p.execListTasks,
		ToolPrefix + "get_task":               p.execGetTask,
		ToolPrefix + "list_cloud_accounts":    p.execListCloudAccounts,
	}

	handler, ok := handlers[name]
	if !ok {
		toolCallsTotal.WithLabelValues(name, "unknown").Inc()
		return nil, fmt.Errorf("unknown tool: %s", name)
	}

	callID := uuid.New().String()
	logger := p.logger.With().Str("tool", name).Str("call_id", callID).Logger()
	logger.Debug().RawJSON("args", normalizeArgs(args)).Msg("executing tool")

	result, err := handler(ctx, args)
	if err != nil {
		toolCallsTotal.WithLabelValues(name, "error").Inc()
		logger.Warn().Err(err).Msg("tool call failed")
		return nil, err
	}

	toolCallsTotal.WithLabelValues(name, "ok").Inc()
	return result, nil
}

func normalizeArgs(args json.RawMessage) json.RawMessage {
	if len(args) == 0 {
		return json.RawMessage("{}")
	}
	return args
}

// --- Tool handlers ---

func (p *Provider) execGetCurrentAccount(ctx context.Context, _ json.RawMessage) (any, error) {
	return p.GetCurrentAccount(ctx)
}

func (p *Provider) execListSubscriptions(ctx context.Context, _ json.RawMessage) (any, error) {
	return p.ListSubscriptions(ctx)
}

func (p *Provider) execGetSubscription(ctx context.Context, _ json.RawMessage) (any, error) {
	return p.GetSubscription(ctx)
}

func (p *Provider) execGetSubscriptionByID(ctx context.Context, args json.RawMessage) (any, error) {
	var a struct {
		SubscriptionID int `json:"subscription_id" validate:"required"`
	}
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return p.GetSubscriptionByID(ctx, a.SubscriptionID)
}

func (p *Provider) execListDatabases(ctx context.Context, _ json.RawMessage) (any, error) {
	return p.ListDatabases(ctx)
}

func (p *Provider) execGetDatabase(ctx context.Context, _ json.RawMessage) (any, error) {
	return p.GetDatabase(ctx)
}

func (p *Provider) execGetDatabaseByName(ctx context.Context, args json.RawMessage) (any, error) {
	var a struct {
		Name string `json:"name" validate:"required"`
	}
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return p.GetDatabaseByName(ctx, a.Name)
}

func (p *Provider) execListUsers(ctx context.Context, _ json.RawMessage) (any, error) {
	return p.ListUsers(ctx)
}

func (p *Provider) execListTasks(ctx context.Context, _ json.RawMessage) (any, error) {
	return p.ListTasks(ctx)
}

func (p *Provider) execGetTask(ctx context.Context, args json.RawMessage) (any, error) {
	var a struct {
		TaskID string `json:"task_id" validate:"required"`
	}
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return p.GetTask(ctx, a.TaskID)
}

func (p *Provider) execListCloudAccounts(ctx context.Context, _ json.RawMessage) (any, error) {
	return p.ListCloudAccounts(ctx)
}
