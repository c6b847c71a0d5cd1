package database_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"stocktrack/internal/apperrors"
	"stocktrack/internal/database"
	"stocktrack/internal/database/models"
	balancehandler "stocktrack/internal/services/balance/handler"
	cataloghandler "stocktrack/internal/services/catalog/handler"
	ledgerhandler "stocktrack/internal/services/ledger/handler"
)

func TestLedgerAndBalancesAgainstPostgres(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := context.Background()

	pgName, pgPort := startPostgresContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(pgName) })

	dsn := fmt.Sprintf("host=127.0.0.1 port=%s user=postgres password=testpw dbname=stocktrack_test sslmode=disable", pgPort)
	db, err := database.NewConnection(dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	logger := logrus.New()
	catalog := cataloghandler.NewCatalogHandler(db)
	ledger := ledgerhandler.NewLedgerHandler(db)
	balances := balancehandler.NewBalanceHandler(db, logger)

	item, err := catalog.CreateItem(ctx, cataloghandler.ItemInput{
		SKU:    "SKU-1",
		Name:   "Widget",
		UOM:    "pcs",
		MinQty: decimal.NewFromInt(5),
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	t.Run("duplicate sku conflicts", func(t *testing.T) {
		_, err := catalog.CreateItem(ctx, cataloghandler.ItemInput{SKU: "SKU-1", Name: "Other", UOM: "pcs"})
		if !apperrors.Is(err, apperrors.KindConflict) {
			t.Fatalf("expected conflict, got %v", err)
		}
	})

	warehouse, err := catalog.CreateLocation(ctx, "W")
	if err != nil {
		t.Fatalf("CreateLocation: %v", err)
	}

	t.Run("dangling item leaves ledger untouched", func(t *testing.T) {
		before := countMoves(t, db)
		_, err := ledger.Append(ctx, ledgerhandler.MoveInput{
			ItemID:     9999,
			LocationID: &warehouse.ID,
			Type:       models.MoveTypeIn,
			Qty:        decimal.NewFromInt(1),
		})
		if !apperrors.Is(err, apperrors.KindReference) {
			t.Fatalf("expected reference error, got %v", err)
		}
		if after := countMoves(t, db); after != before {
			t.Fatalf("ledger changed on failed append: %d -> %d", before, after)
		}
	})

	t.Run("getOrCreateLocationID is idempotent per name", func(t *testing.T) {
		name := "R"
		first, err := ledger.GetOrCreateLocationID(ctx, nil, &name)
		if err != nil {
			t.Fatalf("first call: %v", err)
		}
		second, err := ledger.GetOrCreateLocationID(ctx, nil, &name)
		if err != nil {
			t.Fatalf("second call: %v", err)
		}
		if first != second {
			t.Fatalf("expected same id, got %d and %d", first, second)
		}
		var count int64
		if err := db.Model(&models.Location{}).Where("name = ?", name).Count(&count).Error; err != nil {
			t.Fatalf("count: %v", err)
		}
		if count != 1 {
			t.Fatalf("expected exactly one location named %q, got %d", name, count)
		}
	})

	t.Run("scenario: in 10, out 7, out 3", func(t *testing.T) {
		for _, mv := range []struct {
			typ models.MoveType
			qty int64
		}{
			{models.MoveTypeIn, 10},
			{models.MoveTypeOut, 7},
			{models.MoveTypeOut, 3},
		} {
			if _, err := ledger.Append(ctx, ledgerhandler.MoveInput{
				ItemID:     item.ID,
				LocationID: &warehouse.ID,
				Type:       mv.typ,
				Qty:        decimal.NewFromInt(mv.qty),
			}); err != nil {
				t.Fatalf("Append %s %d: %v", mv.typ, mv.qty, err)
			}
		}

		rows, err := balances.List(ctx)
		if err != nil {
			t.Fatalf("List balances: %v", err)
		}
		row := findRow(t, rows, "SKU-1", "W")
		if !row.QtyOnHand.Equal(decimal.Zero) {
			t.Fatalf("expected 0 on hand, got %s", row.QtyOnHand)
		}
		if !row.OutOfStock || !row.LowStock {
			t.Fatalf("expected out-of-stock and low-stock flags, got %+v", row)
		}
	})

	t.Run("view and fold agree", func(t *testing.T) {
		var items []models.Item
		if err := db.Find(&items).Error; err != nil {
			t.Fatalf("load items: %v", err)
		}
		var locations []models.Location
		if err := db.Find(&locations).Error; err != nil {
			t.Fatalf("load locations: %v", err)
		}
		var moves []models.InventoryMove
		if err := db.Find(&moves).Error; err != nil {
			t.Fatalf("load moves: %v", err)
		}

		var viewRows []models.ItemLocationBalance
		if err := db.Raw(`SELECT item_id, sku, name, location_id, location, qty_on_hand
			FROM v_item_location_balances ORDER BY sku, location`).Scan(&viewRows).Error; err != nil {
			t.Fatalf("query view: %v", err)
		}

		folded := balancehandler.ComputeBalances(items, locations, moves)
		if len(folded) != len(viewRows) {
			t.Fatalf("row count mismatch: view %d, fold %d", len(viewRows), len(folded))
		}
		for i := range folded {
			if folded[i].ItemID != viewRows[i].ItemID ||
				folded[i].LocationID != viewRows[i].LocationID ||
				!folded[i].QtyOnHand.Equal(viewRows[i].QtyOnHand) {
				t.Fatalf("row %d mismatch: view %+v, fold %+v", i, viewRows[i], folded[i])
			}
		}
	})

	t.Run("batch is all-or-nothing", func(t *testing.T) {
		before := countMoves(t, db)
		_, err := ledger.AppendBatch(ctx, []ledgerhandler.MoveInput{
			{ItemID: item.ID, LocationID: &warehouse.ID, Type: models.MoveTypeIn, Qty: decimal.NewFromInt(5)},
			{ItemID: 9999, LocationID: &warehouse.ID, Type: models.MoveTypeIn, Qty: decimal.NewFromInt(5)},
		})
		if !apperrors.Is(err, apperrors.KindReference) {
			t.Fatalf("expected reference error, got %v", err)
		}
		if after := countMoves(t, db); after != before {
			t.Fatalf("partial batch committed: %d -> %d", before, after)
		}
	})

	t.Run("delete blocked while referenced, allowed after", func(t *testing.T) {
		err := catalog.DeleteItem(ctx, item.ID)
		if !apperrors.Is(err, apperrors.KindConflict) {
			t.Fatalf("expected conflict while referenced, got %v", err)
		}

		if err := db.Where("item_id = ?", item.ID).Delete(&models.InventoryMove{}).Error; err != nil {
			t.Fatalf("clear moves: %v", err)
		}
		if err := catalog.DeleteItem(ctx, item.ID); err != nil {
			t.Fatalf("expected delete to succeed once unreferenced, got %v", err)
		}
	})
}

func countMoves(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&models.InventoryMove{}).Count(&count).Error; err != nil {
		t.Fatalf("count moves: %v", err)
	}
	return count
}

func findRow(t *testing.T, rows []balancehandler.BalanceRow, sku, location string) balancehandler.BalanceRow {
	t.Helper()
	for _, row := range rows {
		if row.SKU == sku && row.Location == location {
			return row
		}
	}
	t.Fatalf("no balance row for %s @ %s", sku, location)
	return balancehandler.BalanceRow{}
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func dockerRmForce(container string) error {
	_, err := dockerRun("rm", "-f", container)
	return err
}

func startPostgresContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("stocktrack-test-pg-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "POSTGRES_PASSWORD=testpw",
		"-e", "POSTGRES_DB=stocktrack_test",
		"-p", "127.0.0.1:0:5432",
		"postgres:16",
	)
	if err != nil {
		t.Fatalf("start postgres container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "5432/tcp")
	if err != nil {
		t.Fatalf("postgres docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "pg_isready", "-U", "postgres")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("postgres did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}
