// Package scenefile reads and writes scene documents as YAML or JSON and
// watches them for external edits.
package scenefile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"poster/internal/domain"
)

// Document is the on-disk form of a scene.
type Document struct {
	ID       string            `json:"id,omitempty" yaml:"id,omitempty"`
	Name     string            `json:"name" yaml:"name"`
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Blocks   []domain.Block    `json:"blocks" yaml:"blocks"`
}

// fileDocument mirrors Document for decoding. Visible is a pointer so a
// block that leaves it out can default to visible.
type fileDocument struct {
	ID       string            `json:"id" yaml:"id"`
	Name     string            `json:"name" yaml:"name"`
	Metadata map[string]string `json:"metadata" yaml:"metadata"`
	Blocks   []fileBlock       `json:"blocks" yaml:"blocks"`
}

type fileBlock struct {
	ID       string           `json:"id" yaml:"id"`
	Type     domain.BlockType `json:"type" yaml:"type"`
	Position domain.Point     `json:"position" yaml:"position"`
	Size     domain.Size      `json:"size" yaml:"size"`
	ZIndex   int              `json:"zIndex" yaml:"zIndex"`
	ParentID string           `json:"parentId" yaml:"parentId"`
	Content  string           `json:"content" yaml:"content"`
	Locked   bool             `json:"locked" yaml:"locked"`
	Visible  *bool            `json:"visible" yaml:"visible"`
}

func (fd *fileDocument) document() *Document {
	doc := &Document{
		ID:       fd.ID,
		Name:     fd.Name,
		Metadata: fd.Metadata,
		Blocks:   make([]domain.Block, len(fd.Blocks)),
	}
	for i, fb := range fd.Blocks {
		doc.Blocks[i] = domain.Block{
			ID:       fb.ID,
			Type:     fb.Type,
			Position: fb.Position,
			Size:     fb.Size,
			ZIndex:   fb.ZIndex,
			ParentID: fb.ParentID,
			Content:  fb.Content,
			Locked:   fb.Locked,
			Visible:  fb.Visible == nil || *fb.Visible,
		}
	}
	return doc
}

type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf picks the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported scene file extension %q", filepath.Ext(path))
	}
}

func Decode(r io.Reader, f Format) (*Document, error) {
	var fd fileDocument
	switch f {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&fd); err != nil && err != io.EOF {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&fd); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", f)
	}
	return fd.document(), nil
}

func Encode(w io.Writer, f Format, doc *Document) error {
	switch f {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(4)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %q", f)
	}
}

// Read loads the document at path.
func Read(path string) (*Document, error) {
	f, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene file: %w", err)
	}
	doc, err := Decode(bytes.NewReader(data), f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Marshal encodes doc in the format path's extension names.
func Marshal(path string, doc *Document) ([]byte, error) {
	f, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, f, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write stores doc at path, replacing the file atomically.
func Write(path string, doc *Document) error {
	data, err := Marshal(path, doc)
	if err != nil {
		return err
	}
	return WriteData(path, data)
}

// WriteData atomically replaces path with already encoded data.
func WriteData(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create scene directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write scene file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write scene file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace scene file: %w", err)
	}
	return nil
}
