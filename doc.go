/*
Package ferret is a keyword-hunting web extraction agent built on a small
directed-graph workflow runtime.

Given a list of URLs and a keyword, Ferret scrapes every page concurrently,
asks a language model to extract the information related to the keyword, and
stops as soon as one page actually answers for it. The final report names the
page the hit came from and carries the extracted record.

# Concept

The hunt is modelled as a graph of named nodes sharing one incrementally
merged state. Each node returns only the fields it changed; per-field reducers
decide how concurrent writes combine (first answer wins, boolean flags are
sticky, work queues drain). One node fans out into a batch of concurrent
scrapers with a join barrier, so a dead page can never abort the batch: its
failure is contained in the state and the hunt moves on.

The runtime lives in pkg/graph and is reusable on its own; the extraction
boundary lives in pkg/extract. This package wires the two into the hunt and
is the surface meant for embedding.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"
		"os"

		"github.com/aretw0/ferret"
	)

	func main() {
		agent, err := ferret.New(os.Getenv("OPENAI_API_KEY"))
		if err != nil {
			log.Fatal(err)
		}

		report, err := agent.Run(context.Background(), ferret.Input{
			URLs:    []string{"https://python.langchain.com"},
			Keyword: "How to track token usage for LLMs",
		})
		if err != nil {
			log.Fatal(err)
		}

		if report.Found {
			fmt.Println("found on", report.SourceURL)
		} else {
			fmt.Println("keyword not found on any page")
		}
	}

Inject a custom extractor with WithExtractor to run without the OpenAI API,
or a headless-browser fetcher with WithFetcher for script-heavy sites.
*/
package ferret
