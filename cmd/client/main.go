// Command client is a small CLI for exercising a running fenrir
// server: place, cancel, and replace orders and print execution
// reports as they arrive.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strings"
	"time"

	"fenrir/internal/engine"
	"fenrir/internal/fixedpoint"
	"fenrir/internal/gateway"
	"fenrir/internal/order"
)

func main() {
	serverAddr := flag.String("server", "127.0.0.1:9001", "address of the matching engine gateway")
	action := flag.String("action", "place", "action to perform: place, cancel, replace")
	orderID := flag.Uint64("id", 0, "order id (required for all actions)")
	sideStr := flag.String("side", "buy", "order side: buy or sell")
	typeStr := flag.String("type", "limit", "order type: limit, market, ioc, postonly")
	price := flag.Int64("price", 0, "limit price in ticks")
	qty := flag.Uint64("qty", 0, "quantity in lots")
	symbol := flag.Uint("symbol", 0, "symbol id")
	flag.Parse()

	if *orderID == 0 {
		fmt.Fprintln(os.Stderr, "Error: -id is required")
		flag.Usage()
		os.Exit(1)
	}

	conn, err := net.DialTimeout("tcp", *serverAddr, 5*time.Second)
	if err != nil {
		log.Fatalf("failed to connect to %s: %v", *serverAddr, err)
	}
	defer conn.Close()
	fmt.Printf("connected to %s\n", *serverAddr)

	go readReports(conn)

	cmd, err := buildCommand(*action, *orderID, *sideStr, *typeStr, *price, *qty, uint32(*symbol))
	if err != nil {
		log.Fatal(err)
	}

	if _, err := conn.Write(gateway.EncodeCommand(cmd)); err != nil {
		log.Fatalf("failed to send command: %v", err)
	}
	fmt.Printf("-> sent %s for order %d\n", *action, *orderID)

	fmt.Println("listening for reports (Ctrl+C to exit)...")
	select {}
}

func buildCommand(action string, id uint64, sideStr, typeStr string, price int64, qty uint64, symbol uint32) (engine.Command, error) {
	switch strings.ToLower(action) {
	case "place":
		side := order.Bid
		if strings.ToLower(sideStr) == "sell" {
			side = order.Ask
		}
		typ, err := parseOrderType(typeStr)
		if err != nil {
			return engine.Command{}, err
		}
		return engine.NewOrder(order.ID(id), side, typ, fixedpoint.Price(price), fixedpoint.Quantity(qty), symbol), nil
	case "cancel":
		return engine.CancelOrder(order.ID(id)), nil
	case "replace":
		return engine.ReplaceOrder(order.ID(id), fixedpoint.Price(price), fixedpoint.Quantity(qty)), nil
	default:
		return engine.Command{}, fmt.Errorf("unknown action %q", action)
	}
}

func parseOrderType(s string) (order.Type, error) {
	switch strings.ToLower(s) {
	case "limit":
		return order.Limit, nil
	case "market":
		return order.Market, nil
	case "ioc":
		return order.IOC, nil
	case "postonly":
		return order.PostOnly, nil
	default:
		return 0, fmt.Errorf("unknown order type %q", s)
	}
}

func readReports(conn net.Conn) {
	buf := make([]byte, gateway.EventWireSize)
	for {
		if _, err := io.ReadFull(conn, buf); err != nil {
			if err != io.EOF {
				log.Printf("connection lost: %v", err)
			}
			os.Exit(0)
		}

		ev, err := gateway.DecodeEvent(buf)
		if err != nil {
			log.Printf("bad event frame: %v", err)
			continue
		}
		printEvent(ev)
	}
}

func printEvent(ev engine.Event) {
	switch ev.Kind {
	case engine.EventAck:
		fmt.Printf("\n[ACK] order %d resting qty %d\n", ev.OrderID, ev.Quantity)
	case engine.EventFill:
		fmt.Printf("\n[FILL] order %d vs %d @ %d qty %d\n", ev.OrderID, ev.CounterpartyID, ev.Price, ev.Quantity)
	case engine.EventCancelAck:
		fmt.Printf("\n[CANCEL ACK] order %d\n", ev.OrderID)
	case engine.EventCancelled:
		fmt.Printf("\n[CANCELLED] order %d unfilled qty %d\n", ev.OrderID, ev.Quantity)
	case engine.EventReject:
		fmt.Printf("\n[REJECT] order %d reason %s\n", ev.OrderID, ev.Reason)
	}
}
