package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	waiteragent "github.com/tavolahq/waiter/agent/agents/waiter"
	"github.com/tavolahq/waiter/agent/agents/turnengine"
	promptx "github.com/tavolahq/waiter/agent/prompt"
	statex "github.com/tavolahq/waiter/agent/state"
	toolx "github.com/tavolahq/waiter/agent/tool"
	configx "github.com/tavolahq/waiter/pkg/config"
	_ "github.com/tavolahq/waiter/pkg/logger/autoload"
	openrouterx "github.com/tavolahq/waiter/pkg/openrouter"
	menux "github.com/tavolahq/waiter/restaurant/menu"
	notifyx "github.com/tavolahq/waiter/restaurant/notify"
	orderlogx "github.com/tavolahq/waiter/restaurant/orderlog"
	orderx "github.com/tavolahq/waiter/restaurant/order"
)

type AppConfig struct {
	ChefEmail      string `envconfig:"CHEF_EMAIL" default:"kitchen@tavola.local"`
	OrdersFile     string `envconfig:"ORDERS_FILE" default:"orders.xlsx"`
	OrdersDB       string `envconfig:"ORDERS_DB"`
	KitchenChannel string `envconfig:"KITCHEN_CHANNEL" default:"smtp"`
	SessionStore   string `envconfig:"SESSION_STORE" default:"memory"`
}

func main() {
	appCfg := configx.MustNew[AppConfig]("")

	openRouterCfg := configx.MustNew[openrouterx.OpenRouterConfig]("OPENROUTER")
	verifyModel(*openRouterCfg)

	ctx := context.Background()

	chatModel, err := openRouterCfg.New(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("create chat model")
	}

	prompts := promptx.LoadPromptSet()
	engine, err := turnengine.New(ctx, chatModel, prompts.Waiter)
	if err != nil {
		log.Fatal().Err(err).Msg("create turn engine")
	}

	catalog := menux.DefaultCatalog()

	var ledgerOpts []orderx.LedgerOption
	if appCfg.OrdersDB != "" {
		archive, err := orderx.OpenArchive(appCfg.OrdersDB)
		if err != nil {
			log.Fatal().Err(err).Str("path", appCfg.OrdersDB).Msg("open order archive")
		}
		defer archive.Close()
		ledgerOpts = append(ledgerOpts, orderx.WithArchive(archive))
	}
	ledger := orderx.NewLedger(catalog, ledgerOpts...)

	sender := newKitchenSender(appCfg.KitchenChannel)
	dispatcher := notifyx.NewDispatcher(sender, ledger)

	excelLog, err := orderlogx.NewExcelLog(appCfg.OrdersFile)
	if err != nil {
		log.Fatal().Err(err).Str("path", appCfg.OrdersFile).Msg("open order workbook")
	}

	gateway, err := toolx.NewGateway(catalog, ledger, dispatcher, excelLog, toolx.Config{
		DefaultChefEmail: appCfg.ChefEmail,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("create tool gateway")
	}

	store := newSessionStore(appCfg.SessionStore)

	waiter, err := waiteragent.New(store, engine, gateway)
	if err != nil {
		log.Fatal().Err(err).Msg("create waiter")
	}

	runTerminal(ctx, waiter)
}

// verifyModel checks the configured model against the provider's catalog.
// A miss is only warned about; the provider list lags behind sometimes.
func verifyModel(cfg openrouterx.OpenRouterConfig) {
	client := openrouterx.NewClient(cfg)
	if client == nil {
		log.Fatal().Msg("openrouter api key is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := client.Models.Get(ctx, cfg.Model); err != nil {
		log.Warn().Err(err).Str("model", cfg.Model).Msg("could not verify model with provider")
	}
}

func newKitchenSender(channel string) notifyx.Sender {
	switch strings.ToLower(strings.TrimSpace(channel)) {
	case "webhook":
		cfg := configx.MustNew[notifyx.WebhookConfig]("KITCHEN_WEBHOOK")
		sender, err := notifyx.NewWebhookSender(*cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("create webhook sender")
		}
		return sender
	default:
		cfg := configx.MustNew[notifyx.SMTPConfig]("SMTP")
		sender, err := notifyx.NewSMTPSender(*cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("create smtp sender")
		}
		return sender
	}
}

func newSessionStore(kind string) statex.Store {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "upstash":
		cfg := configx.MustNew[statex.UpstashRedisConfig]("UPSTASH_REDIS")
		store, err := statex.NewUpstashRedisStore(*cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("create upstash store")
		}
		return store
	default:
		return statex.NewMemoryStore()
	}
}

func runTerminal(ctx context.Context, waiter *waiteragent.Waiter) {
	sessionID := uuid.NewString()

	fmt.Println("Restaurant Chatbot")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Println("Type 'quit' to exit")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if strings.Contains(strings.ToLower(text), "quit") {
			fmt.Println("Thanks for visiting!")
			break
		}

		reply, err := waiter.HandleMessage(ctx, sessionID, text)
		if err != nil {
			log.Error().Err(err).Msg("handle message")
			continue
		}
		fmt.Printf("Waiter: %s\n\n", reply)
	}

	if err := scanner.Err(); err != nil {
		log.Error().Err(err).Msg("read input")
	}
}
