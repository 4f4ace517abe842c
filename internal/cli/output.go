package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/synoprune/synoprune/internal/synology"
)

// writeJSON emits v as indented JSON to stdout ("-") or a file,
// honoring the --json flag value.
func writeJSON(dest string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if dest == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(dest, data, 0644)
}

// printTaskTable renders tasks as an aligned table.
func printTaskTable(tasks []synology.Task) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tSIZE\tUPLOADED\tCOMPLETED")
	for _, t := range tasks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID,
			t.Title,
			t.Status,
			humanize.Bytes(uint64(t.Size)),
			humanize.Bytes(uint64(t.SizeUploaded())),
			formatTime(t.CompletedTime()),
		)
	}
	w.Flush()
}

// printTaskDetail renders one task's full detail block.
func printTaskDetail(t synology.Task) {
	fmt.Printf("ID:        %s\n", t.ID)
	fmt.Printf("Title:     %s\n", t.Title)
	fmt.Printf("Status:    %s\n", t.Status)
	fmt.Printf("Type:      %s\n", t.Type)
	fmt.Printf("Owner:     %s\n", t.Username)
	fmt.Printf("Size:      %s\n", humanize.Bytes(uint64(t.Size)))

	if t.Additional == nil {
		return
	}
	if d := t.Additional.Detail; d != nil {
		fmt.Printf("Destination: %s\n", d.Destination)
		fmt.Printf("Created:     %s\n", formatTime(d.CreateTime))
		fmt.Printf("Started:     %s\n", formatTime(d.StartedTime))
		fmt.Printf("Completed:   %s\n", formatTime(d.CompletedTime))
		fmt.Printf("Peers/Seeds: %d/%d\n", d.ConnectedPeers, d.ConnectedSeeders)
	}
	if tr := t.Additional.Transfer; tr != nil {
		fmt.Printf("Downloaded:  %s\n", humanize.Bytes(uint64(t.SizeDownloaded())))
		fmt.Printf("Uploaded:    %s\n", humanize.Bytes(uint64(t.SizeUploaded())))
		fmt.Printf("DL/UL speed: %s/s / %s/s\n",
			humanize.Bytes(uint64(tr.SpeedDownload)), humanize.Bytes(uint64(tr.SpeedUpload)))
	}
}

// formatTime renders a Unix-seconds timestamp, or "-" for zero.
func formatTime(unix int64) string {
	if unix == 0 {
		return "-"
	}
	return time.Unix(unix, 0).Format("2006-01-02 15:04:05")
}
