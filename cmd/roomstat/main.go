// Command roomstat prints the live rooms of a running server as a table.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/Tyrowin/roomchat/internal/server"
)

func main() {
	addr := flag.String("addr", "http://localhost:8080", "base URL of the chat server")
	flag.Parse()

	diag, err := fetch(*addr + "/api/rooms")
	if err != nil {
		fmt.Fprintf(os.Stderr, "roomstat: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("rooms=%d connections=%d uptime=%s\n", diag.RoomCount, diag.Connections, diag.Uptime)
	fmt.Printf("pid=%d rss=%dKiB cpu=%.1f%% goroutines=%d\n\n",
		diag.Process.PID, diag.Process.RSSBytes/1024, diag.Process.CPUPercent, diag.Process.Goroutines)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Room", "Members", "History"})
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	for _, room := range diag.Rooms {
		table.Append([]string{room.ID, strconv.Itoa(room.Members), strconv.Itoa(room.History)})
	}
	table.Render()
}

func fetch(url string) (server.Diagnostics, error) {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return server.Diagnostics{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return server.Diagnostics{}, fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	var diag server.Diagnostics
	if err := json.NewDecoder(resp.Body).Decode(&diag); err != nil {
		return server.Diagnostics{}, fmt.Errorf("decode diagnostics: %w", err)
	}
	return diag, nil
}
