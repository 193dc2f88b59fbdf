package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"cafepos/internal/config"
	"cafepos/internal/database"
	"cafepos/internal/logger"
	"cafepos/internal/messaging"
	"cafepos/internal/models"
	"cafepos/internal/services/kitchen"
	"cafepos/internal/services/orders"
	"cafepos/internal/services/payments"
	"cafepos/internal/storage"
)

func main() {
	// Parse command line flags
	mode := flag.String("mode", "", "Mode (migrate, demo)")
	flag.Parse()

	if *mode == "" {
		fmt.Fprintf(os.Stderr, "Error: --mode flag is required\n")
		flag.Usage()
		os.Exit(1)
	}

	// Optional .env for local development
	_ = godotenv.Load()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(*mode)
	defer log.Sync()
	requestID := logger.GenerateRequestID()

	// Set up graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("graceful_shutdown", "Received shutdown signal", requestID, nil)
		cancel()
	}()

	switch *mode {
	case "migrate":
		if err := runMigrate(ctx, cfg, log); err != nil {
			log.Error("migrate_failed", "Migrations failed", requestID, err, nil)
			os.Exit(1)
		}
	case "demo":
		if err := runDemo(ctx, cfg, log); err != nil {
			log.Error("demo_failed", "Demo walkthrough failed", requestID, err, nil)
			os.Exit(1)
		}
	default:
		log.Error("validation_failed", fmt.Sprintf("Unknown mode: %s", *mode), requestID, nil, nil)
		os.Exit(1)
	}

	log.Info("finished", "Done", requestID, nil)
}

// runMigrate applies the schema migrations against PostgreSQL.
func runMigrate(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	db, err := database.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	return db.RunMigrations(ctx, "migrations")
}

// runDemo walks one order through its whole lifecycle against the
// in-memory store: create, add items, kitchen flow, payment. If RabbitMQ
// is reachable the kitchen events are broadcast for real; otherwise the
// walkthrough runs without them.
func runDemo(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	requestID := logger.GenerateRequestID()

	store := storage.NewMemory()
	seedDemo(store)

	var pub kitchen.Publisher
	if conn, err := messaging.New(cfg, log); err == nil {
		defer conn.Close()
		pub = messaging.NewPublisher(conn, log)
		log.Info("rabbitmq_connected", "Connected to RabbitMQ", requestID, nil)
	} else {
		log.Info("rabbitmq_skipped", "RabbitMQ unavailable, running without broadcast", requestID, nil)
	}

	dispatch := kitchen.NewDispatcher(pub, store, log)
	orderSvc := orders.NewService(store, dispatch, log)
	kitchenSvc := kitchen.NewService(store, dispatch, log)
	paymentSvc := payments.NewService(store, dispatch, log)

	tableID := int64(1)
	order, err := orderSvc.Create(ctx, orders.CreateParams{
		OutletID:  1,
		TableID:   &tableID,
		Type:      models.DineIn,
		Source:    models.SourcePOS,
		PartyName: "Window party",
	})
	if err != nil {
		return err
	}
	log.Info("demo_order_created", fmt.Sprintf("Order %s created", order.Number), requestID, map[string]interface{}{
		"order_id": order.ID,
		"status":   string(order.Status),
	})

	if _, err = orderSvc.AddItem(ctx, orders.AddItemParams{
		OrderID:    order.ID,
		MenuItemID: 1,
		Quantity:   2,
	}); err != nil {
		return err
	}
	variantID := int64(1)
	order, err = orderSvc.AddItem(ctx, orders.AddItemParams{
		OrderID:    order.ID,
		MenuItemID: 2,
		VariantID:  &variantID,
		Quantity:   1,
		Addons:     []models.Addon{{Name: "Extra shot", Price: decimal.NewFromInt(30)}},
	})
	if err != nil {
		return err
	}
	log.Info("demo_bill", "Bill computed", requestID, map[string]interface{}{
		"subtotal": order.Subtotal.String(),
		"cgst":     order.CGSTAmount.String(),
		"sgst":     order.SGSTAmount.String(),
		"total":    order.TotalAmount.String(),
	})

	if order.Status == models.StatusPending {
		if _, err := orderSvc.UpdateStatus(ctx, order.ID, models.StatusConfirmed, nil, "demo"); err != nil {
			return err
		}
	}

	for _, step := range []func(context.Context, int64, *int64, string) (bool, string){
		kitchenSvc.StartPreparing,
		kitchenSvc.Bump,
	} {
		ok, msg := step(ctx, order.ID, nil, "demo cook")
		log.Info("demo_kitchen", msg, requestID, map[string]interface{}{"ok": ok})
		if !ok {
			return fmt.Errorf("kitchen step failed: %s", msg)
		}
	}

	if _, err := orderSvc.UpdateStatus(ctx, order.ID, models.StatusServed, nil, "demo waiter"); err != nil {
		return err
	}

	order, err = orderSvc.Get(ctx, order.ID)
	if err != nil {
		return err
	}
	tendered := order.TotalAmount.Add(decimal.NewFromInt(100))
	payment, order, err := paymentSvc.Record(ctx, payments.RecordParams{
		OrderID:        order.ID,
		Amount:         order.TotalAmount,
		Method:         models.MethodCash,
		AmountTendered: &tendered,
	})
	if err != nil {
		return err
	}

	change := "0"
	if payment.ChangeAmount != nil {
		change = payment.ChangeAmount.String()
	}
	log.Info("demo_settled", fmt.Sprintf("Order %s settled", order.Number), requestID, map[string]interface{}{
		"status": string(order.Status),
		"paid":   order.PaidAmount.String(),
		"change": change,
	})

	return nil
}

// seedDemo loads a small outlet, floor and menu into the memory store.
func seedDemo(store *storage.Memory) {
	store.SeedOutlet(&models.Outlet{
		ID:       1,
		Name:     "Corner Cafe",
		Code:     "CC",
		IsActive: true,
	})
	store.SeedTable(&models.Table{ID: 1, OutletID: 1, Number: "T1", Capacity: 4, IsActive: true})
	store.SeedTable(&models.Table{ID: 2, OutletID: 1, Number: "T2", Capacity: 2, IsActive: true})

	store.SeedMenuItem(1, "Masala Dosa", decimal.NewFromInt(120), true)
	store.SeedMenuItem(2, "Filter Coffee", decimal.NewFromInt(40), true)
	store.SeedMenuVariant(1, 2, "Large", decimal.NewFromInt(60))

	store.SeedTaxSettings(models.DefaultTaxSettings())
	store.SeedOrderSettings(models.DefaultOrderSettings())
}
