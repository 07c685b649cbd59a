// Package backup serves health and version probes, zip backup and restore of
// the data directory, and the encryption lock endpoints.
package backup

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	apphttp "budgetlens/internal/http"
	"budgetlens/internal/logger"
	"budgetlens/internal/services/ledger"
	"budgetlens/internal/services/storage"
	"budgetlens/internal/version"
)

// MaxRestoreBytes caps an uploaded backup archive
const MaxRestoreBytes = 50 << 20

var (
	store *storage.Storage
	books *ledger.Ledger
	clock func() time.Time
)

// Initialize sets up the backup package with required dependencies
func Initialize(s *storage.Storage, l *ledger.Ledger, now func() time.Time) {
	store = s
	books = l
	clock = now
}

// RegisterRoutes registers health, backup and storage routes
func RegisterRoutes(r chi.Router) {
	r.Get("/api/health", HandleHealth)
	r.Get("/api/version", HandleVersion)
	r.Get("/api/backup", HandleBackup)
	r.Post("/api/restore", HandleRestore)

	r.Route("/api/storage", func(r chi.Router) {
		r.Get("/status", handleStatus)
		r.Post("/unlock", handleUnlock)
		r.Post("/lock", handleLock)
		r.Post("/enable", handleEnable)
		r.Post("/disable", handleDisable)
	})
}

func HandleHealth(w http.ResponseWriter, r *http.Request) {
	apphttp.OK(w, r, map[string]string{"status": "ok"})
}

func HandleVersion(w http.ResponseWriter, r *http.Request) {
	apphttp.OK(w, r, version.Get())
}

// HandleBackup streams a zip of every data file. Entries are written
// decrypted so the archive can be restored into any data directory.
func HandleBackup(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	files, err := store.DataFiles()
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}

	// Build in memory so a locked store can still answer with a clean error
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range files {
		data, err := store.ReadFile(name)
		if err != nil {
			apphttp.Error(w, r, fmt.Errorf("failed to read %s: %w", name, err))
			return
		}
		f, err := zw.Create(filepath.ToSlash(name))
		if err != nil {
			apphttp.Error(w, r, err)
			return
		}
		if _, err := f.Write(data); err != nil {
			apphttp.Error(w, r, err)
			return
		}
	}
	if err := zw.Close(); err != nil {
		apphttp.Error(w, r, err)
		return
	}

	filename := fmt.Sprintf("budgetlens_backup_%s.zip", clock().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Write(buf.Bytes())

	log.Info().Int("files", len(files)).Msg("Backup created")
}

// HandleRestore unpacks a backup archive uploaded in the "file" field and
// reloads the ledger. Only JSON and CSV entries are restored, flattened to
// their base name.
func HandleRestore(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, MaxRestoreBytes)
	if err := r.ParseMultipartForm(MaxRestoreBytes); err != nil {
		apphttp.ErrorResponse(w, r, "File too large", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		apphttp.ErrorResponse(w, r, "Error reading file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".zip") {
		apphttp.ErrorResponse(w, r, "Only ZIP backup files are allowed", http.StatusBadRequest)
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		apphttp.ErrorResponse(w, r, "Error reading file", http.StatusInternalServerError)
		return
	}

	zipReader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		apphttp.ErrorResponse(w, r, "Invalid ZIP file", http.StatusBadRequest)
		return
	}

	restored := 0
	for _, zipFile := range zipReader.File {
		if zipFile.FileInfo().IsDir() {
			continue
		}
		// base name only, no path traversal
		baseName := filepath.Base(zipFile.Name)
		lower := strings.ToLower(baseName)
		if strings.Contains(baseName, "..") || !(strings.HasSuffix(lower, ".json") || strings.HasSuffix(lower, ".csv")) {
			continue
		}

		data, err := readEntry(zipFile)
		if err != nil {
			log.Warn().Err(err).Str("entry", zipFile.Name).Msg("Skipping unreadable zip entry")
			continue
		}
		if err := store.WriteFile(baseName, data); err != nil {
			apphttp.Error(w, r, fmt.Errorf("failed to restore %s: %w", baseName, err))
			return
		}
		restored++
		log.Debug().Str("file", baseName).Msg("Restored file")
	}

	if restored == 0 {
		apphttp.ErrorResponse(w, r, "No data files found in backup", http.StatusBadRequest)
		return
	}
	if err := books.Reload(); err != nil {
		apphttp.Error(w, r, err)
		return
	}

	log.Info().Int("files", restored).Msg("Restore complete")
	apphttp.OK(w, r, map[string]int{"restored": restored})
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

type storageStatus struct {
	Encrypted bool `json:"encrypted"`
	Unlocked  bool `json:"unlocked"`
}

type passwordRequest struct {
	Password string `json:"password"`
}

func currentStatus() storageStatus {
	return storageStatus{Encrypted: store.IsEncrypted(), Unlocked: store.IsUnlocked()}
}

func handleStatus(w http.ResponseWriter, r *http.Request) {
	apphttp.OK(w, r, currentStatus())
}

// handleUnlock derives the keys and loads the ledger
func handleUnlock(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if err := apphttp.DecodeJSON(w, r, &req); err != nil {
		apphttp.Error(w, r, err)
		return
	}
	if !store.IsEncrypted() {
		apphttp.Error(w, r, storage.ErrNotEncrypted)
		return
	}
	if err := store.Unlock(req.Password); err != nil {
		apphttp.Error(w, r, err)
		return
	}
	if err := books.Reload(); err != nil {
		apphttp.Error(w, r, err)
		return
	}
	log := logger.FromContext(r.Context())
	log.Info().Msg("Storage unlocked")
	apphttp.OK(w, r, currentStatus())
}

// handleLock forgets the keys and drops the in-memory ledger
func handleLock(w http.ResponseWriter, r *http.Request) {
	if !store.IsEncrypted() {
		apphttp.Error(w, r, storage.ErrNotEncrypted)
		return
	}
	store.Lock()
	books.Unload()
	log := logger.FromContext(r.Context())
	log.Info().Msg("Storage locked")
	apphttp.OK(w, r, currentStatus())
}

func handleEnable(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if err := apphttp.DecodeJSON(w, r, &req); err != nil {
		apphttp.Error(w, r, err)
		return
	}
	if err := store.EnableEncryption(req.Password); err != nil {
		apphttp.Error(w, r, err)
		return
	}
	log := logger.FromContext(r.Context())
	log.Info().Msg("Encryption enabled")
	apphttp.OK(w, r, currentStatus())
}

func handleDisable(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if err := apphttp.DecodeJSON(w, r, &req); err != nil {
		apphttp.Error(w, r, err)
		return
	}
	if err := store.DisableEncryption(req.Password); err != nil {
		apphttp.Error(w, r, err)
		return
	}
	// a ledger that was locked can be read again
	if err := books.Reload(); err != nil {
		apphttp.Error(w, r, err)
		return
	}
	log := logger.FromContext(r.Context())
	log.Info().Msg("Encryption disabled")
	apphttp.OK(w, r, currentStatus())
}
