package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/Strob0t/HeadlineForge/internal/adapter/postgres"
	"github.com/Strob0t/HeadlineForge/internal/config"
	"github.com/Strob0t/HeadlineForge/internal/domain/apikey"
	"github.com/Strob0t/HeadlineForge/internal/domain/audit"
	"github.com/Strob0t/HeadlineForge/internal/domain/tenant"
	"github.com/Strob0t/HeadlineForge/internal/service"
)

const adminActor = "cli"

// runAdmin dispatches admin subcommands.
func runAdmin(args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "--help" {
		printAdminHelp()
		return nil
	}

	switch args[0] {
	case "create-tenant":
		return runAdminCreateTenant(args[1:])
	case "issue-key":
		return runAdminIssueKey(args[1:])
	case "list-keys":
		return runAdminListKeys(args[1:])
	case "revoke-key":
		return runAdminRevokeKey(args[1:])
	case "set-plan":
		return runAdminSetPlan(args[1:])
	default:
		printAdminHelp()
		return fmt.Errorf("unknown admin command: %s", args[0])
	}
}

func printAdminHelp() {
	fmt.Fprintf(os.Stderr, `Usage: headlineforge admin <command> [options]

Commands:
  create-tenant   Create a tenant
  issue-key       Issue an api key (the secret is shown once)
  list-keys       List a tenant's active api keys
  revoke-key      Revoke an api key
  set-plan        Put a tenant on a plan for the current month
  help            Show this help message

Examples:
  headlineforge admin create-tenant --name "Acme" --slug acme
  headlineforge admin issue-key --tenant <id> --name ci
  headlineforge admin set-plan --tenant <id> --plan Pro
`)
}

type adminDeps struct {
	tenants *service.TenantService
	keys    *service.CredentialService
	close   func()
}

// loadAdminDeps connects the store and the shared cache, so plan changes
// and revocations evict what running gateways have cached.
func loadAdminDeps(ctx context.Context) (*adminDeps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	in, err := openInfra(ctx, cfg)
	if err != nil {
		pool.Close()
		return nil, err
	}

	store := postgres.NewStore(pool)
	resolver := service.NewTenantResolver(store, in.Auth, cfg.Quota.AuthCacheVersion, cfg.Quota.AuthCacheTTL)
	ledger := service.NewQuotaLedger(in.Counter, in.Lookup, store, service.QuotaConfig{
		DefaultLimit:  cfg.Quota.DefaultLimit,
		LimitCacheTTL: cfg.Quota.LimitCacheTTL,
		CounterGrace:  cfg.Quota.CounterGrace,
	})

	return &adminDeps{
		tenants: service.NewTenantService(store, ledger),
		keys:    service.NewCredentialService(store, resolver),
		close: func() {
			in.Close()
			pool.Close()
		},
	}, nil
}

func adminContext() context.Context {
	return audit.WithActor(context.Background(), adminActor)
}

func runAdminCreateTenant(args []string) error {
	fs := flag.NewFlagSet("create-tenant", flag.ContinueOnError)
	name := fs.String("name", "", "tenant display name (required)")
	slug := fs.String("slug", "", "url-safe tenant slug (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" || *slug == "" {
		return fmt.Errorf("--name and --slug are required")
	}

	ctx := adminContext()
	deps, err := loadAdminDeps(ctx)
	if err != nil {
		return err
	}
	defer deps.close()

	t, err := deps.tenants.Create(ctx, tenant.CreateRequest{Name: *name, Slug: *slug})
	if err != nil {
		return fmt.Errorf("create tenant: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Tenant created: %s (slug=%s)\n", t.ID, t.Slug)
	fmt.Println(t.ID)
	return nil
}

func runAdminIssueKey(args []string) error {
	fs := flag.NewFlagSet("issue-key", flag.ContinueOnError)
	tenantID := fs.String("tenant", "", "tenant id (required)")
	name := fs.String("name", "default", "key name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *tenantID == "" {
		return fmt.Errorf("--tenant is required")
	}

	ctx := adminContext()
	deps, err := loadAdminDeps(ctx)
	if err != nil {
		return err
	}
	defer deps.close()

	res, err := deps.keys.Issue(ctx, *tenantID, apikey.CreateRequest{Name: *name})
	if err != nil {
		return fmt.Errorf("issue key: %w", err)
	}

	// Scripts piping stdout get the bare secret.
	if !term.IsTerminal(int(os.Stdout.Fd())) { //nolint:gosec // fd fits in int
		fmt.Println(res.Key)
		return nil
	}
	fmt.Printf("API key %q issued (id=%s, prefix=%s)\n\n  %s\n\n", res.Name, res.ID, res.Prefix, res.Key)
	fmt.Println("Store it now: the secret cannot be shown again.")
	return nil
}

func runAdminListKeys(args []string) error {
	fs := flag.NewFlagSet("list-keys", flag.ContinueOnError)
	tenantID := fs.String("tenant", "", "tenant id (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *tenantID == "" {
		return fmt.Errorf("--tenant is required")
	}

	ctx := adminContext()
	deps, err := loadAdminDeps(ctx)
	if err != nil {
		return err
	}
	defer deps.close()

	keys, err := deps.keys.List(ctx, *tenantID)
	if err != nil {
		return fmt.Errorf("list keys: %w", err)
	}
	if len(keys) == 0 {
		fmt.Println("No api keys found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tPREFIX\tCREATED\tLAST_USED")
	for i := range keys {
		lastUsed := "-"
		if !keys[i].LastUsedAt.IsZero() {
			lastUsed = keys[i].LastUsedAt.Format("2006-01-02 15:04")
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			keys[i].ID, keys[i].Name, keys[i].Prefix, keys[i].CreatedAt.Format("2006-01-02 15:04"), lastUsed)
	}
	return w.Flush()
}

func runAdminRevokeKey(args []string) error {
	fs := flag.NewFlagSet("revoke-key", flag.ContinueOnError)
	tenantID := fs.String("tenant", "", "tenant id (required)")
	id := fs.String("id", "", "api key id (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *tenantID == "" || *id == "" {
		return fmt.Errorf("--tenant and --id are required")
	}

	ctx := adminContext()
	deps, err := loadAdminDeps(ctx)
	if err != nil {
		return err
	}
	defer deps.close()

	if err := deps.keys.Revoke(ctx, *tenantID, *id); err != nil {
		return fmt.Errorf("revoke key: %w", err)
	}
	fmt.Fprintf(os.Stderr, "API key revoked: %s\n", *id)
	return nil
}

func runAdminSetPlan(args []string) error {
	fs := flag.NewFlagSet("set-plan", flag.ContinueOnError)
	tenantID := fs.String("tenant", "", "tenant id (required)")
	plan := fs.String("plan", "", "plan name (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *tenantID == "" || *plan == "" {
		return fmt.Errorf("--tenant and --plan are required")
	}

	ctx := adminContext()
	deps, err := loadAdminDeps(ctx)
	if err != nil {
		return err
	}
	defer deps.close()

	sub, err := deps.tenants.SetPlan(ctx, *tenantID, *plan)
	if err != nil {
		return fmt.Errorf("set plan: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Tenant %s on plan %s (limit=%s) until %s\n",
		*tenantID, sub.Plan.Name, strconv.FormatInt(sub.Plan.MonthlyRequestLimit, 10), sub.PeriodEnd.Format("2006-01-02"))
	return nil
}

// runMigrate applies (up), rolls back (down) or reports (status) migrations.
func runMigrate(args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	steps := fs.Int("steps", 1, "migrations to roll back with down")
	if err := fs.Parse(args); err != nil {
		return err
	}
	action := "up"
	if fs.NArg() > 0 {
		action = fs.Arg(0)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	ctx := context.Background()

	switch action {
	case "up":
		if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
			return err
		}
	case "down":
		if err := postgres.RollbackMigrations(ctx, cfg.Postgres.DSN, *steps); err != nil {
			return err
		}
	case "status":
	default:
		return fmt.Errorf("unknown migrate action: %s (want up, down or status)", action)
	}

	v, err := postgres.MigrationVersion(ctx, cfg.Postgres.DSN)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "migration version: %d\n", v)
	return nil
}
