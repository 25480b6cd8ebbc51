package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lpearl21/rl-earnings/internal/dataset"
	"github.com/lpearl21/rl-earnings/internal/player"
	"github.com/lpearl21/rl-earnings/internal/region"
)

// Store kinds accepted by Open
const (
	KindCSV    = "csv"
	KindSQLite = "sqlite"
)

const DefaultCSVFile = "rl_player_earnings.csv"

// Columns is the exact header of the persisted dataset
var Columns = []string{
	"player",
	"country",
	"first_place",
	"second_place",
	"third_place",
	"earnings",
	"region",
	"total_wins",
	"earnings_per_win",
}

var (
	// ErrBadHeader is returned when a dataset file does not start with Columns
	ErrBadHeader = errors.New("unexpected dataset header")
	// ErrNoDataset is returned by Load when nothing has been saved yet
	ErrNoDataset = errors.New("dataset not found")
)

// Open returns the store of the given kind rooted at dataDir
func Open(kind, dataDir, file string) (dataset.Store, error) {
	dir, err := prepareDir(dataDir)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(kind) {
	case "", KindCSV:
		if file == "" {
			file = DefaultCSVFile
		}
		return &CSVStore{path: filepath.Join(dir, file)}, nil
	case KindSQLite:
		if file == "" || strings.HasSuffix(file, ".csv") {
			file = strings.TrimSuffix(file, ".csv")
			if file == "" {
				file = strings.TrimSuffix(DefaultCSVFile, ".csv")
			}
			file += ".db"
		}
		return OpenSQLite(filepath.Join(dir, file))
	default:
		return nil, fmt.Errorf("unknown store kind: %s (must be 'csv' or 'sqlite')", kind)
	}
}

// prepareDir expands ~ and creates the data directory
func prepareDir(dataDir string) (string, error) {
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", fmt.Errorf("creating data directory: %w", err)
	}

	return dataDir, nil
}

// CSVStore persists the dataset as a CSV file
type CSVStore struct {
	path string
}

// NewCSVStore creates a CSVStore writing to path
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

// Path returns the CSV file location
func (s *CSVStore) Path() string {
	return s.path
}

// Save replaces the CSV file with records.
// The data is written to a temporary file first and renamed into place.
func (s *CSVStore) Save(records []*player.Record) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if err := WriteCSV(tmp, records); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replacing dataset: %w", err)
	}

	return nil
}

// Load reads every record from the CSV file
func (s *CSVStore) Load() ([]*player.Record, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoDataset, s.path)
		}
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	return ReadCSV(f)
}

// WriteCSV writes the header and one row per record
func WriteCSV(w io.Writer, records []*player.Record) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, rec := range records {
		if err := cw.Write(recordRow(rec)); err != nil {
			return fmt.Errorf("writing record %s: %w", rec.Player, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing dataset: %w", err)
	}
	return nil
}

// ReadCSV parses a dataset written by WriteCSV
func ReadCSV(r io.Reader) ([]*player.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Columns)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", ErrBadHeader)
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}
	for i, col := range Columns {
		if strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff")) != col {
			return nil, fmt.Errorf("%w: column %d is %q, want %q", ErrBadHeader, i+1, header[i], col)
		}
	}

	records := make([]*player.Record, 0)
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading line %d: %w", line, err)
		}

		rec, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}

	return records, nil
}

func recordRow(rec *player.Record) []string {
	return []string{
		rec.Player,
		rec.Country,
		strconv.Itoa(rec.FirstPlace),
		strconv.Itoa(rec.SecondPlace),
		strconv.Itoa(rec.ThirdPlace),
		formatFloat(rec.Earnings),
		string(rec.Region),
		strconv.Itoa(rec.TotalWins),
		formatFloat(rec.EarningsPerWin),
	}
}

// parseRow rebuilds a record from its persisted columns.
// Derived fields are recomputed and must agree with the stored ones.
func parseRow(row []string) (*player.Record, error) {
	name := strings.TrimSpace(row[0])
	if name == "" {
		return nil, fmt.Errorf("empty player name")
	}

	var ints [4]int
	for i, idx := range []int{2, 3, 4, 7} {
		n, err := strconv.Atoi(strings.TrimSpace(row[idx]))
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", Columns[idx], err)
		}
		ints[i] = n
	}

	earnings, err := strconv.ParseFloat(strings.TrimSpace(row[5]), 64)
	if err != nil {
		return nil, fmt.Errorf("parsing earnings: %w", err)
	}

	r, err := region.Parse(row[6])
	if err != nil {
		return nil, err
	}

	return rebuild(player.Entry{
		Player:      name,
		Country:     row[1],
		FirstPlace:  ints[0],
		SecondPlace: ints[1],
		ThirdPlace:  ints[2],
		Earnings:    earnings,
	}, r, ints[3])
}

// rebuild recomputes derived fields and checks the stored total_wins against them
func rebuild(e player.Entry, r region.Region, storedTotalWins int) (*player.Record, error) {
	rec := player.NewRecord(e, r)
	if rec.TotalWins != storedTotalWins {
		return nil, fmt.Errorf("player %s: total_wins %d does not match placements (%d)", rec.Player, storedTotalWins, rec.TotalWins)
	}
	return rec, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
