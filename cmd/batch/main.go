package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"cfdibox/internal/archive"
	"cfdibox/internal/batch"
	"cfdibox/internal/cfdi"
	"cfdibox/internal/config"
	"cfdibox/internal/csvexport"
	"cfdibox/internal/domain"
	fsstorage "cfdibox/internal/storage/fs"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	inDir := flag.String("in", "facturas_xml", "directory containing CFDI XML files")
	outFile := flag.String("out", "reporte_contable.csv", "path of the CSV report to write")
	noArchive := flag.Bool("no-archive", false, "skip copying source files into the organized archive")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	docs, err := readDocuments(*inDir)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("no XML files found in %q", *inDir)
	}

	extractor := cfdi.NewExtractor(
		cfdi.TaxPolicyFromConfig(cfg.Tax),
		cfdi.DeductPolicyFromConfig(cfg.Deduct),
	)
	processor := batch.NewProcessor(extractor, cfg.Batch.Concurrency, cfg.Batch.DocTimeout())

	ctx := context.Background()
	result := batch.Fold(processor.Process(ctx, docs))

	if result.Count() == 0 {
		return errors.New("no valid data extracted from supplied documents")
	}

	if err := writeReport(*outFile, result.Records); err != nil {
		return err
	}

	if !*noArchive {
		archiver := archive.NewArchiver(fsstorage.NewFSClient(cfg.Archive.Root), "")
		sources := make(map[string][]byte, len(docs))
		for i := range docs {
			sources[docs[i].Name] = docs[i].Content
		}
		stored := archiver.Store(ctx, result, sources)
		fmt.Printf("Archivos organizados en: %s (%d)\n", cfg.Archive.Root, stored)
	}

	printSummary(result, *outFile)
	return nil
}

// readDocuments loads every .xml file in dir, in directory listing order.
// Processing order decides which copy of a duplicated invoice survives, so
// the listing is not reordered.
func readDocuments(dir string) ([]domain.RawDocument, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading input directory: %w", err)
	}

	var docs []domain.RawDocument
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".xml") {
			continue
		}
		content, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", e.Name(), err)
		}
		docs = append(docs, domain.RawDocument{Name: e.Name(), Content: content})
	}
	return docs, nil
}

func writeReport(path string, records []domain.InvoiceRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(csvexport.BOM); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	w := csvexport.NewWriter(f)
	if err := w.WriteHeader(); err != nil {
		return fmt.Errorf("writing report header: %w", err)
	}
	if err := w.WriteRecords(records); err != nil {
		return fmt.Errorf("writing report rows: %w", err)
	}
	w.Flush()
	return w.Error()
}

func printSummary(result *domain.BatchResult, outFile string) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 40))
	fmt.Println(" PROCESO COMPLETADO")
	fmt.Println(strings.Repeat("=", 40))
	for _, t := range []domain.InvoiceType{
		domain.TypeIncome, domain.TypeExpense, domain.TypePayment,
		domain.TypePayroll, domain.TypeTransfer, domain.TypeOther,
	} {
		ts, ok := result.ByType[t]
		if !ok {
			continue
		}
		fmt.Printf("%-10s | %3d | $ %15s\n", t.Label(), ts.Count, ts.Total.StringFixed(2))
	}
	fmt.Println(strings.Repeat("-", 40))
	fmt.Printf("Reporte:             %s\n", outFile)
	fmt.Printf("Comprobantes:        %d\n", result.Count())
	fmt.Printf("Duplicados evitados: %d\n", result.DuplicateCount)
	if result.MissingStampCount > 0 {
		fmt.Printf("Sin timbre:          %d\n", result.MissingStampCount)
	}
	if result.MalformedCount > 0 {
		fmt.Printf("Con errores:         %d\n", result.MalformedCount)
	}
	fmt.Println(strings.Repeat("=", 40))
}
