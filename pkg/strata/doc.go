// Package strata is the client driver for the Strata data store: a
// remote, schemaless store organized around records, keys, and
// time-versioned values.
//
// Callers build flexible argument combinations and invoke a small set of
// logical operations; the driver resolves each combination to exactly one
// fixed-arity remote variant before anything touches the network.
//
// Example:
//
//	client, err := strata.New(ctx, types.Config{
//	    Address:  "localhost:7817",
//	    Username: "admin",
//	    Password: "admin",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	records, err := client.Add(ctx, strata.NewArgs().Key("name").Value("jeff"))
//	data, err := client.Get(ctx, strata.NewArgs().Keys("name", "age").Criteria("age > 30"))
//
// Writes may be staged into an atomic transaction:
//
//	if err := client.Stage(ctx); err != nil { ... }
//	client.Set(ctx, strata.NewArgs().Key("age").Value(31).Record(1))
//	if err := client.Commit(ctx); err != nil {
//	    // on types.ErrTransactionConflict the transaction was discarded;
//	    // stage again and retry the whole sequence.
//	}
package strata
