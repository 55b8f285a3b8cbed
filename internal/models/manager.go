package models

import (
	"archive/zip"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Model describes a downloadable Vosk recognition model.
type Model struct {
	Name        string
	Language    string
	Size        string
	URL         string
	Description string
}

// DefaultModelName is used when no default has been configured.
const DefaultModelName = "vosk-model-small-en-us-0.15"

// defaultMarker is the file under the models dir naming the default.
const defaultMarker = ".default_model"

// AvailableModels is the catalog of models the assistant knows how to
// fetch.
var AvailableModels = []Model{
	{
		Name:        "vosk-model-small-en-us-0.15",
		Language:    "en-US",
		Size:        "40M",
		URL:         "https://alphacephei.com/vosk/models/vosk-model-small-en-us-0.15.zip",
		Description: "Lightweight English model, fast but less accurate",
	},
	{
		Name:        "vosk-model-en-us-0.22-lgraph",
		Language:    "en-US",
		Size:        "128M",
		URL:         "https://alphacephei.com/vosk/models/vosk-model-en-us-0.22-lgraph.zip",
		Description: "Medium English model, balanced speed and accuracy",
	},
	{
		Name:        "vosk-model-en-us-0.22",
		Language:    "en-US",
		Size:        "1.8G",
		URL:         "https://alphacephei.com/vosk/models/vosk-model-en-us-0.22.zip",
		Description: "Large English model, slower but more accurate",
	},
}

// FindModel looks a model up in the catalog by name.
func FindModel(name string) *Model {
	for i := range AvailableModels {
		if AvailableModels[i].Name == name {
			return &AvailableModels[i]
		}
	}
	return nil
}

// GetModelsDir returns the directory models are installed under.
func GetModelsDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".lexvoice", "models"), nil
}

// GetDefaultModel returns the configured default model name, falling
// back to DefaultModelName when none has been set.
func GetDefaultModel() (string, error) {
	modelsDir, err := GetModelsDir()
	if err != nil {
		return DefaultModelName, err
	}

	data, err := os.ReadFile(filepath.Join(modelsDir, defaultMarker))
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultModelName, nil
		}
		return DefaultModelName, err
	}

	if name := strings.TrimSpace(string(data)); name != "" {
		return name, nil
	}
	return DefaultModelName, nil
}

// SetDefaultModel records which model to use by default. The model
// must exist in the catalog.
func SetDefaultModel(modelName string) error {
	if FindModel(modelName) == nil {
		return fmt.Errorf("unknown model: %s", modelName)
	}

	modelsDir, err := GetModelsDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(modelsDir, 0755); err != nil {
		return fmt.Errorf("failed to create models directory: %w", err)
	}

	marker := filepath.Join(modelsDir, defaultMarker)
	if err := os.WriteFile(marker, []byte(modelName), 0644); err != nil {
		return fmt.Errorf("failed to save default model: %w", err)
	}
	return nil
}

// IsModelDownloaded reports whether a model directory is installed.
func IsModelDownloaded(modelName string) (bool, error) {
	modelsDir, err := GetModelsDir()
	if err != nil {
		return false, err
	}

	info, err := os.Stat(filepath.Join(modelsDir, modelName))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

// GetModelPath returns the installed path of a model, or an error when
// the model has not been downloaded.
func GetModelPath(modelName string) (string, error) {
	modelsDir, err := GetModelsDir()
	if err != nil {
		return "", err
	}

	downloaded, err := IsModelDownloaded(modelName)
	if err != nil {
		return "", err
	}
	if !downloaded {
		return "", fmt.Errorf("model not found: %s", modelName)
	}
	return filepath.Join(modelsDir, modelName), nil
}

// progressReader reports cumulative bytes read through the callback.
type progressReader struct {
	r        io.Reader
	total    int64
	read     int64
	progress func(downloaded, total int64)
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 {
		p.read += int64(n)
		if p.progress != nil {
			p.progress(p.read, p.total)
		}
	}
	return n, err
}

// DownloadModel fetches a catalog model archive and installs it under
// the models directory. The progress callback, if non-nil, receives
// downloaded and total byte counts as the transfer advances.
func DownloadModel(modelName string, progress func(downloaded, total int64)) error {
	model := FindModel(modelName)
	if model == nil {
		return fmt.Errorf("unknown model: %s", modelName)
	}

	modelsDir, err := GetModelsDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(modelsDir, 0755); err != nil {
		return fmt.Errorf("failed to create models directory: %w", err)
	}

	resp, err := http.Get(model.URL)
	if err != nil {
		return fmt.Errorf("failed to download model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status: %s", resp.Status)
	}

	archivePath := filepath.Join(modelsDir, modelName+".zip")
	if err := saveArchive(archivePath, resp.Body, resp.ContentLength, progress); err != nil {
		os.Remove(archivePath)
		return err
	}
	defer os.Remove(archivePath)

	if err := unpackArchive(archivePath, modelsDir); err != nil {
		return fmt.Errorf("failed to extract model: %w", err)
	}
	return nil
}

func saveArchive(path string, body io.Reader, total int64, progress func(downloaded, total int64)) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer out.Close()

	src := &progressReader{r: body, total: total, progress: progress}
	if _, err := io.Copy(out, src); err != nil {
		return fmt.Errorf("download error: %w", err)
	}
	return nil
}

// unpackArchive extracts a model zip, refusing entries that would
// escape the destination directory.
func unpackArchive(archivePath, destDir string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return err
	}
	defer r.Close()

	root := filepath.Clean(destDir) + string(os.PathSeparator)
	for _, f := range r.File {
		target := filepath.Join(destDir, f.Name)
		if !strings.HasPrefix(target, root) {
			return fmt.Errorf("illegal file path: %s", target)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, os.ModePerm); err != nil {
				return err
			}
			continue
		}
		if err := extractFile(f, target); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), os.ModePerm); err != nil {
		return err
	}

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
	if err != nil {
		return err
	}
	defer out.Close()

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	_, err = io.Copy(out, rc)
	return err
}

// ListDownloadedModels returns the names of installed model
// directories.
func ListDownloadedModels() ([]string, error) {
	modelsDir, err := GetModelsDir()
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(modelsDir)
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read models directory: %w", err)
	}

	var installed []string
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), "vosk-model-") {
			installed = append(installed, entry.Name())
		}
	}
	return installed, nil
}
