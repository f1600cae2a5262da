// Command genrefdata writes the built-in reference tables as YAML, giving
// operators a starting point for REFERENCE_DATA_PATH.
//
// Usage:
//
//	go run ./cmd/genrefdata -out deploy/reference.yaml
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/couchcryptid/agri-assist-api/internal/domain"
)

const header = "# Reference data for agri-assist-api. Sections omitted from this file keep\n# their built-in values. Check edits with: go run ./cmd/validate -file <path>\n"

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path (default stdout)")
	flag.Parse()

	ref := domain.DefaultReferenceData()
	if *out == "" {
		return write(os.Stdout, ref)
	}
	if err := writeFile(*out, ref); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", *out)
	return nil
}

// writeFile writes ref to path, reporting a failed close when the write itself
// succeeded.
func writeFile(path string, ref domain.ReferenceData) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return write(f, ref)
}

func write(w io.Writer, ref domain.ReferenceData) error {
	data, err := ref.YAML()
	if err != nil {
		return fmt.Errorf("encode reference data: %w", err)
	}
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
