// Package brlookup resolves Brazilian postal codes (CEP) and company
// registrations (CNPJ) by racing several public data providers concurrently
// and returning the first normalized answer.
//
// A lookup fans out to every candidate adapter at once. Each adapter is
// wrapped with its own rate limiter and an exponential backoff retry policy;
// the first adapter to return a valid, normalized entity wins and the rest
// are cancelled. Winners carry provenance: which provider answered and when.
//
// Basic use:
//
//	client, err := brlookup.New(nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	addr, err := client.Address(ctx, "01001-000")
//	company, err := client.Company(ctx, "11.222.333/0001-81")
//
// Configuration is loaded from the environment with config.New, or built in
// code with config.Default. Custom provider sets are registered through
// providers.Registry and passed with WithRegistry.
//
// When every provider fails, the error is a *race.AllFailedError holding one
// terminal result per provider, so callers can tell confirmed absence
// (OnlyNotFound) from transient trouble.
package brlookup
