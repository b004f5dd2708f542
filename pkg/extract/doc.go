/*
Package extract provides the content-extraction capability consumed by the
agent graph: fetch a page, hand it to a language model with an extraction
instruction, and decode the structured result.

The package is split along two seams so either half can be swapped in tests
or embeddings:

  - Fetcher turns a URL into page text. HTTPFetcher does a plain GET with a
    crude tag strip; ChromeFetcher drives a headless browser for pages that
    need JavaScript to render.
  - Extractor turns (url, instruction) into a Record. OpenAIExtractor is the
    production implementation against the chat-completions API.
*/
package extract
