package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"warehouseledger/internal/core"
	"warehouseledger/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	ledger := core.NewLedger(pool)
	master := core.NewMasterData()
	reservations := core.NewReservationStore()
	inventory := core.NewInventoryQuery(pool, ledger, reservations)
	receipts := core.NewReceiptService(pool, ledger, master)
	transfers := core.NewTransferService(pool, ledger, master, inventory)
	picks := core.NewPickService(pool, ledger, master, inventory, reservations)
	counts := core.NewCycleCountService(pool, ledger, master, inventory)

	runREPL(ctx, receipts, transfers, picks, counts, inventory)
}

func runREPL(ctx context.Context, receipts *core.ReceiptService, transfers *core.TransferService,
	picks *core.PickService, counts *core.CycleCountService, inventory *core.InventoryQuery) {

	reader := bufio.NewReader(os.Stdin)
	fmt.Println("Warehouse Ledger")
	fmt.Println("Type /help for commands.")
	fmt.Println(strings.Repeat("-", 70))

	errExit := fmt.Errorf("exit")

	dispatch := func(input string) error {
		tokens := strings.Fields(strings.TrimPrefix(input, "/"))
		if len(tokens) == 0 {
			return nil
		}
		cmd := strings.ToLower(tokens[0])
		args := tokens[1:]

		switch cmd {
		case "onhand":
			if len(args) < 2 {
				fmt.Println("Usage: /onhand <item-id> <location-id>")
				return nil
			}
			itemID, locID, err := parseIDs(args[0], args[1])
			if err != nil {
				return err
			}
			onHand, err := inventory.OnHand(ctx, itemID, locID)
			if err != nil {
				return err
			}
			fmt.Printf("On hand: %d\n", onHand)

		case "available":
			if len(args) < 2 {
				fmt.Println("Usage: /available <item-id> <location-id>")
				return nil
			}
			itemID, locID, err := parseIDs(args[0], args[1])
			if err != nil {
				return err
			}
			avail, err := inventory.Available(ctx, itemID, locID)
			if err != nil {
				return err
			}
			fmt.Printf("Available: %d\n", avail)

		case "receive":
			if len(args) < 3 {
				fmt.Println("Usage: /receive <sku> <location-code> <qty>")
				return nil
			}
			qty, err := strconv.Atoi(args[2])
			if err != nil {
				fmt.Printf("Invalid quantity: %s\n", args[2])
				return nil
			}
			result, err := receipts.ReceiveSingle(ctx, args[0], args[1], qty)
			if err != nil {
				return err
			}
			fmt.Printf("Receipt posted. Ledger entry #%d for item %s at %s.\n",
				result.LedgerEntryID, result.Item.SKU, result.Location.Code)

		case "transfer-create":
			if len(args) < 4 || len(args)%2 != 0 {
				fmt.Println("Usage: /transfer-create <from-loc-id> <to-loc-id> <sku> <qty> [<sku> <qty> ...]")
				return nil
			}
			fromID, toID, err := parseIDs(args[0], args[1])
			if err != nil {
				return err
			}
			items, err := parseSKUQtyPairs(args[2:])
			if err != nil {
				return err
			}
			var reqs []core.TransferItemRequest
			for _, it := range items {
				reqs = append(reqs, core.TransferItemRequest{SKU: it.sku, Quantity: it.qty})
			}
			tw, err := transfers.Create(ctx, fromID, toID, reqs)
			if err != nil {
				return err
			}
			fmt.Printf("Transfer #%d created in DRAFT with %d line(s).\n", tw.Transfer.ID, len(tw.Lines))

		case "transfer-complete":
			if len(args) < 1 {
				fmt.Println("Usage: /transfer-complete <transfer-id>")
				return nil
			}
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return err
			}
			ct, err := transfers.Complete(ctx, id)
			if err != nil {
				return err
			}
			fmt.Printf("Transfer #%d COMPLETED. %d ledger entry pair(s) posted.\n", ct.Transfer.ID, len(ct.LedgerEntries))

		case "pick-create":
			if len(args) < 3 || len(args)%3 != 0 {
				fmt.Println("Usage: /pick-create <sku> <qty> <location-code> [<sku> <qty> <location-code> ...]")
				return nil
			}
			var reqs []core.PickItemRequest
			for i := 0; i < len(args); i += 3 {
				qty, err := strconv.Atoi(args[i+1])
				if err != nil {
					return err
				}
				reqs = append(reqs, core.PickItemRequest{SKU: args[i], Quantity: qty, LocationCode: args[i+2]})
			}
			pw, err := picks.Create(ctx, reqs)
			if err != nil {
				return err
			}
			fmt.Printf("Pick wave #%d created in DRAFT with %d line(s).\n", pw.Wave.ID, len(pw.Lines))

		case "pick-allocate":
			if len(args) < 1 {
				fmt.Println("Usage: /pick-allocate <wave-id>")
				return nil
			}
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return err
			}
			apw, err := picks.Allocate(ctx, id)
			if err != nil {
				return err
			}
			fmt.Printf("Pick wave #%d ALLOCATED. %d reservation(s) created.\n", apw.Wave.ID, len(apw.Reservations))

		case "pick-confirm":
			if len(args) < 1 {
				fmt.Println("Usage: /pick-confirm <wave-id>")
				return nil
			}
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return err
			}
			cp, err := picks.Confirm(ctx, id)
			if err != nil {
				return err
			}
			fmt.Printf("Pick wave #%d now %s. %d ledger entry(ies) posted.\n", cp.Wave.ID, cp.Wave.Status, len(cp.LedgerEntries))

		case "count-open":
			if len(args) < 2 {
				fmt.Println("Usage: /count-open <location-code> <sku> [<sku> ...]")
				return nil
			}
			cw, err := counts.Open(ctx, args[0], args[1:])
			if err != nil {
				return err
			}
			fmt.Printf("Cycle count #%d opened with %d line(s).\n", cw.Count.ID, len(cw.Lines))

		case "count-submit":
			if len(args) < 3 {
				fmt.Println("Usage: /count-submit <cycle-count-id> <item-id> <counted-qty>")
				return nil
			}
			countID, itemID, err := parseIDs(args[0], args[1])
			if err != nil {
				return err
			}
			countedQty, err := strconv.Atoi(args[2])
			if err != nil {
				return err
			}
			sl, err := counts.SubmitLine(ctx, countID, itemID, countedQty)
			if err != nil {
				return err
			}
			if sl.LedgerEntryID != nil {
				fmt.Printf("Line submitted. Variance posted as ledger entry #%d. Count status: %s.\n", *sl.LedgerEntryID, sl.Count.Status)
			} else {
				fmt.Printf("Line submitted. No variance. Count status: %s.\n", sl.Count.Status)
			}

		case "help", "h":
			printHelp()

		case "exit", "quit", "e", "q":
			return errExit

		default:
			fmt.Printf("Unknown command: /%s  (type /help for all commands)\n", cmd)
		}
		return nil
	}

	for {
		fmt.Print("\n> ")
		input, _ := reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if !strings.HasPrefix(input, "/") {
			fmt.Println("Commands start with /. Type /help for the list.")
			continue
		}
		if err := dispatch(input); err != nil {
			if err == errExit {
				fmt.Println("Goodbye!")
				break
			}
			fmt.Printf("Error: %v\n", err)
		}
	}
}

func parseIDs(a, b string) (int, int, error) {
	x, err := strconv.Atoi(a)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid id: %s", a)
	}
	y, err := strconv.Atoi(b)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid id: %s", b)
	}
	return x, y, nil
}

type skuQty struct {
	sku string
	qty int
}

func parseSKUQtyPairs(args []string) ([]skuQty, error) {
	var out []skuQty
	for i := 0; i < len(args); i += 2 {
		qty, err := strconv.Atoi(args[i+1])
		if err != nil {
			return nil, fmt.Errorf("invalid quantity: %s", args[i+1])
		}
		out = append(out, skuQty{sku: args[i], qty: qty})
	}
	return out, nil
}

func printHelp() {
	fmt.Println()
	fmt.Println("WAREHOUSE LEDGER — COMMANDS")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Println("  INVENTORY QUERY")
	fmt.Println("  /onhand <item-id> <location-id>")
	fmt.Println("  /available <item-id> <location-id>")
	fmt.Println()
	fmt.Println("  RECEIVING")
	fmt.Println("  /receive <sku> <location-code> <qty>")
	fmt.Println()
	fmt.Println("  TRANSFER")
	fmt.Println("  /transfer-create <from-loc-id> <to-loc-id> <sku> <qty> [...]")
	fmt.Println("  /transfer-complete <transfer-id>")
	fmt.Println()
	fmt.Println("  PICK")
	fmt.Println("  /pick-create <sku> <qty> <location-code> [...]")
	fmt.Println("  /pick-allocate <wave-id>")
	fmt.Println("  /pick-confirm <wave-id>")
	fmt.Println()
	fmt.Println("  CYCLE COUNT")
	fmt.Println("  /count-open <location-code> <sku> [<sku> ...]")
	fmt.Println("  /count-submit <cycle-count-id> <item-id> <counted-qty>")
	fmt.Println()
	fmt.Println("  SESSION")
	fmt.Println("  /help                            Show this help")
	fmt.Println("  /exit                            Exit")
	fmt.Println(strings.Repeat("=", 70))
}
