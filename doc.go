// Package llm2pdf converts machine-generated documents to PDF, repairing and
// rendering the mermaid diagrams such documents tend to contain.
//
// # Quick Start
//
// Create a service, convert a document, and close when done:
//
//	svc := llm2pdf.New()
//	defer svc.Close()
//
//	pdfBytes, err := svc.Convert(ctx, llm2pdf.Input{
//	    Document: "# Report\n\n```mermaid\ngraph TD\n A --> B\n```",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("output.pdf", pdfBytes, 0644)
//
// # Conversion Pipeline
//
// The conversion process follows these stages:
//
//  1. Scan fenced code blocks and classify diagram candidates
//  2. Repair common diagram syntax defects (arrows, spacing, stray tables)
//  3. Render each diagram to a PNG: headless Chrome, then a hosted rendering
//     API, then a locally synthesized placeholder
//  4. Splice image references over the diagram blocks by exact byte spans
//  5. Markdown to HTML conversion via Goldmark (GFM, syntax highlighting)
//  6. PDF rendering via headless Chrome (go-rod)
//
// Diagrams that cannot be rendered at all keep their repaired source block in
// the output; a failed diagram never aborts the run.
//
// # Configuration
//
// Use functional options to customize the service:
//
//	svc := llm2pdf.New(
//	    llm2pdf.WithTimeout(2 * time.Minute),
//	    llm2pdf.WithRenderEndpoint("https://mermaid.example.com"),
//	    llm2pdf.WithLogger(logger),
//	)
//
// # Parallel Processing
//
// For batch conversion, use ServicePool to manage multiple browser instances:
//
//	pool := llm2pdf.NewServicePool(llm2pdf.ResolvePoolSize(0))
//	defer pool.Close()
//
//	svc := pool.Acquire()
//	defer pool.Release(svc)
package llm2pdf
