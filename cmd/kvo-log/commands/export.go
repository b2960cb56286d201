package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/kvo-hub/kvo-go/pkg/log"
)

// jsonEvent is the JSONL export form of an event.
type jsonEvent struct {
	Timestamp      string          `json:"timestamp"`
	ProxyID        string          `json:"proxy_id"`
	Proxy          string          `json:"proxy,omitempty"`
	Category       string          `json:"category"`
	Key            string          `json:"key,omitempty"`
	Phase          string          `json:"phase,omitempty"`
	SubscriptionID uint64          `json:"sub_id,omitempty"`
	Interest       string          `json:"interest,omitempty"`
	Value          any             `json:"value,omitempty"`
	Observers      int             `json:"observers,omitempty"`
	Implicit       bool            `json:"implicit,omitempty"`
	Error          *jsonErrorEvent `json:"error,omitempty"`
}

type jsonErrorEvent struct {
	Operation string `json:"op"`
	Message   string `json:"message"`
}

func toJSONEvent(event log.Event) jsonEvent {
	je := jsonEvent{
		Timestamp:      event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z"),
		ProxyID:        event.ProxyID,
		Proxy:          event.Proxy,
		Category:       event.Category.String(),
		Key:            event.Key,
		SubscriptionID: event.SubscriptionID,
		Interest:       event.Interest,
		Value:          jsonSafe(event.Value),
		Observers:      event.Observers,
		Implicit:       event.Implicit,
	}
	if event.Phase != log.PhaseNone {
		je.Phase = event.Phase.String()
	}
	if event.Error != nil {
		je.Error = &jsonErrorEvent{Operation: event.Error.Operation, Message: event.Error.Message}
	}
	return je
}

// RunExport exports the log file to the specified format.
func RunExport(path, format, output string) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	// Determine output writer
	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "jsonl":
		return exportJSONL(reader, w)
	case "csv":
		return exportCSV(reader, w)
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := encoder.Encode(toJSONEvent(event)); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
	return nil
}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	// Write header
	header := []string{"timestamp", "proxy_id", "proxy", "category", "key", "phase", "sub_id", "interest", "value", "observers", "implicit"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		subID, value, observers := "", "", ""
		if event.SubscriptionID != 0 {
			subID = strconv.FormatUint(event.SubscriptionID, 10)
		}
		if event.Category == log.CategoryNotify {
			value = formatValue(event.Value)
		}
		if event.Category == log.CategoryNotify || event.Category == log.CategoryClose {
			observers = strconv.Itoa(event.Observers)
		}
		phase := ""
		if event.Phase != log.PhaseNone {
			phase = event.Phase.String()
		}

		row := []string{
			event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z"),
			event.ProxyID,
			event.Proxy,
			event.Category.String(),
			event.Key,
			phase,
			subID,
			event.Interest,
			value,
			observers,
			strconv.FormatBool(event.Implicit),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return nil
}
