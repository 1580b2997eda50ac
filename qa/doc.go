// Package qa orchestrates the answer pipeline: evidence retrieval, prompt
// assembly, and answer generation across one or more completion models.
//
// The central type is Answerer. It coordinates a Retriever (typically
// search.Searcher) and an ai.Generator, assembling prompts via the prompt
// package and normalizing whatever shape the retriever returns through the
// evidence package.
//
// # Failure isolation
//
// Answerer methods never return errors. Each model produces exactly one
// core.AnswerResult; when a collaborator fails or panics, the result carries
// an "[ERROR] ..." answer and a non-empty Err field, and the remaining
// models still run. AnswerMany always returns one result per requested
// model, in input order.
//
// # Usage
//
//	answerer, err := qa.NewAnswerer(searcher, provider.Generator(),
//	    qa.WithTopK(7),
//	    qa.WithPoolSize(4),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer answerer.Release()
//
//	results := answerer.AnswerMany(ctx, "What happened this week?", models, 600, "")
package qa
