package record

import (
	"bufio"
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/keytap/internal/key"
)

// Recording files are newline-delimited JSON, one event per line:
//
//	{"event_type":"down","name":"a","scan_code":30,"time":1700000000.25}

// Save writes events to path atomically via a temp file and rename.
func Save(path string, events []key.Event) error {
	var buf bytes.Buffer
	for _, ev := range events {
		line, err := encodeEvent(ev)
		if err != nil {
			return err
		}
		buf.WriteString(line)
		buf.WriteByte('\n')
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".recording-*.jsonl")
	if err != nil {
		return fmt.Errorf("record: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("record: write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("record: close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("record: rename %s: %w", path, err)
	}
	return nil
}

// Load reads a recording written by Save. Blank lines are skipped.
func Load(path string) ([]key.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("record: open %s: %w", path, err)
	}
	defer f.Close()

	var events []key.Event
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		ev, err := decodeEvent(string(line))
		if err != nil {
			return nil, fmt.Errorf("record: %s line %d: %w", path, lineNo, err)
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("record: read %s: %w", path, err)
	}
	return events, nil
}

func encodeEvent(ev key.Event) (string, error) {
	line, err := sjson.Set("", "event_type", ev.Kind.String())
	if err != nil {
		return "", fmt.Errorf("record: encode event: %w", err)
	}
	line, _ = sjson.Set(line, "name", ev.Name())
	line, _ = sjson.Set(line, "scan_code", int64(ev.Code))
	line, _ = sjson.Set(line, "time", toSeconds(ev.Time))
	if ev.Device != "" {
		line, _ = sjson.Set(line, "device", ev.Device)
	}
	if ev.Keypad {
		line, _ = sjson.Set(line, "is_keypad", true)
	}
	return line, nil
}

func decodeEvent(line string) (key.Event, error) {
	if !gjson.Valid(line) {
		return key.Event{}, fmt.Errorf("invalid json")
	}
	parsed := gjson.Parse(line)

	kind, err := key.KindFromString(parsed.Get("event_type").String())
	if err != nil {
		return key.Event{}, err
	}

	ev := key.Event{
		Kind:   kind,
		Code:   key.Code(parsed.Get("scan_code").Int()),
		Time:   fromSeconds(parsed.Get("time").Float()),
		Device: parsed.Get("device").String(),
		Keypad: parsed.Get("is_keypad").Bool(),
	}
	if name := parsed.Get("name"); name.Exists() {
		ev.Names = []string{key.Normalize(name.String())}
	}
	return ev, nil
}

// toSeconds converts to Unix seconds with fractional precision, the
// format shared with recordings made by other tools.
func toSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

func fromSeconds(s float64) time.Time {
	sec, frac := math.Modf(s)
	return time.Unix(int64(sec), int64(frac*float64(time.Second)))
}
