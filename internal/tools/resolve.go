package tools

import (
	"context"
	"fmt"
	"strings"
)

// planFamily identifies one of the two subscription plan families the Redis
// Cloud control plane exposes through separate endpoint sets.
type planFamily string

const (
	familyPro        planFamily = "pro"
	familyEssentials planFamily = "essentials"
)

// familyOrder maps the configured subscription type hint to the lookup order.
// Recognized hints put their own family first; "fixed" is the legacy name for
// essentials. Absent or unrecognized hints try essentials first, then pro, a
// tie-break that must stay stable across versions.
func familyOrder(hint string) [2]planFamily {
	switch strings.ToLower(strings.TrimSpace(hint)) {
	case "pro":
		return [2]planFamily{familyPro, familyEssentials}
	case "essentials", "fixed":
		return [2]planFamily{familyEssentials, familyPro}
	default:
		return [2]planFamily{familyEssentials, familyPro}
	}
}

// GetCurrentAccount returns the account the configured credentials belong to.
func (p *Provider) GetCurrentAccount(ctx context.Context) (map[string]any, error) {
	account, err := p.Client().Account(ctx)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, fmt.Errorf("current account not found")
	}
	return account, nil
}

// ListSubscriptions lists subscriptions from both plan families. Each entry
// is annotated with a "planFamily" field so callers can tell them apart.
func (p *Provider) ListSubscriptions(ctx context.Context) ([]map[string]any, error) {
	client := p.Client()

	pro, err := client.Subscriptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pro subscriptions: %w", err)
	}
	essentials, err := client.FixedSubscriptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list essentials subscriptions: %w", err)
	}

	var subscriptions []map[string]any
	for _, sub := range pro {
		sub["planFamily"] = string(familyPro)
		subscriptions = append(subscriptions, sub)
	}
	for _, sub := range essentials {
		sub["planFamily"] = string(familyEssentials)
		subscriptions = append(subscriptions, sub)
	}
	return subscriptions, nil
}

// GetSubscription resolves the configured subscription across plan families.
func (p *Provider) GetSubscription(ctx context.Context) (map[string]any, error) {
	id, err := p.subscriptionID()
	if err != nil {
		return nil, err
	}
	return p.GetSubscriptionByID(ctx, id)
}

// GetSubscriptionByID fetches a subscription by id, trying the hinted plan
// family first and falling back to the other. The type hint can be stale or
// absent, so a miss on the first family is not conclusive.
func (p *Provider) GetSubscriptionByID(ctx context.Context, id int) (map[string]any, error) {
	client := p.Client()
	order := familyOrder(p.instance.SubscriptionType)

	for i, family := range order {
		var sub map[string]any
		var err error
		if family == familyPro {
			sub, err = client.Subscription(ctx, id)
		} else {
			sub, err = client.FixedSubscription(ctx, id)
		}
		if err != nil {
			return nil, err
		}
		if sub != nil {
			if i > 0 {
				planFallbacksTotal.WithLabelValues("subscription").Inc()
				p.logger.Debug().Int("subscription_id", id).
					Str("family", string(family)).Msg("subscription found on fallback family")
			}
			return sub, nil
		}
	}

	return nil, &NotFoundError{SubscriptionID: id}
}

// ListDatabases lists the databases of the configured subscription, with the
// same plan-family fallback as GetSubscription. An empty collection from the
// first family also triggers the fallback.
func (p *Provider) ListDatabases(ctx context.Context) ([]map[string]any, error) {
	id, err := p.subscriptionID()
	if err != nil {
		return nil, err
	}

	client := p.Client()
	order := familyOrder(p.instance.SubscriptionType)

	for i, family := range order {
		var databases []map[string]any
		var err error
		if family == familyPro {
			databases, err = client.Databases(ctx, id)
		} else {
			databases, err = client.FixedDatabases(ctx, id)
		}
		if err != nil {
			return nil, err
		}
		if len(databases) > 0 {
			if i > 0 {
				planFallbacksTotal.WithLabelValues("databases").Inc()
			}
			return databases, nil
		}
	}

	return nil, &NotFoundError{SubscriptionID: id}
}

// GetDatabase resolves the configured database, by id when one is configured,
// otherwise by exact name match over the subscription's databases.
func (p *Provider) GetDatabase(ctx context.Context) (map[string]any, error) {
	if p.instance.DatabaseID != nil {
		return p.getDatabaseByID(ctx, *p.instance.DatabaseID)
	}
	if p.instance.DatabaseName != "" {
		return p.GetDatabaseByName(ctx, p.instance.DatabaseName)
	}
	return nil, fmt.Errorf("database ID or name is not configured")
}

// getDatabaseByID fetches a database by id with plan-family fallback.
func (p *Provider) getDatabaseByID(ctx context.Context, databaseID int) (map[string]any, error) {
	subscriptionID, err := p.subscriptionID()
	if err != nil {
		return nil, err
	}

	client := p.Client()
	order := familyOrder(p.instance.SubscriptionType)

	for i, family := range order {
		var db map[string]any
		var err error
		if family == familyPro {
			db, err = client.Database(ctx, subscriptionID, databaseID)
		} else {
			db, err = client.FixedDatabase(ctx, subscriptionID, databaseID)
		}
		if err != nil {
			return nil, err
		}
		if db != nil {
			if i > 0 {
				planFallbacksTotal.WithLabelValues("database").Inc()
			}
			return db, nil
		}
	}

	return nil, &NotFoundError{SubscriptionID: subscriptionID, DatabaseID: &databaseID}
}

// GetDatabaseByName lists the subscription's databases and matches by exact
// name. Zero matches or an ambiguous name are both errors.
func (p *Provider) GetDatabaseByName(ctx context.Context, name string) (map[string]any, error) {
	databases, err := p.ListDatabases(ctx)
	if err != nil {
		return nil, err
	}

	var matches []map[string]any
	for _, db := range databases {
		if dbName, ok := db["name"].(string); ok && dbName == name {
			matches = append(matches, db)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		id, _ := p.subscriptionID()
		return nil, &NotFoundError{SubscriptionID: id, DatabaseName: name}
	default:
		return nil, fmt.Errorf("database name %q is ambiguous: %d databases match", name, len(matches))
	}
}

// ListUsers lists the account's users.
func (p *Provider) ListUsers(ctx context.Context) ([]map[string]any, error) {
	return p.Client().Users(ctx)
}

// ListTasks lists the account's async tasks.
func (p *Provider) ListTasks(ctx context.Context) ([]map[string]any, error) {
	return p.Client().Tasks(ctx)
}

// GetTask fetches a single task by id.
func (p *Provider) GetTask(ctx context.Context, taskID string) (map[string]any, error) {
	task, err := p.Client().Task(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("task %q not found", taskID)
	}
	return task, nil
}

// ListCloudAccounts lists the configured cloud provider accounts.
func (p *Provider) ListCloudAccounts(ctx context.Context) ([]map[string]any, error) {
	return p.Client().CloudAccounts(ctx)
}
