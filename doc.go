/*
Package kvmodels provides a typed record-mapping layer over key-value stores,
offering declarative model schemas, round-trip-safe field encoding and
filtered queries without hand-written key construction or scan logic.

The library is organized around a few small pieces:
  - Schemas: ordered, typed field definitions built once per model
  - Field codec: per-kind encode/decode between native values and flat strings
  - Key builder: deterministic (prefix, model, id, field) -> key mapping
  - Enumeration: bulk listing or incremental scanning behind one lazy iterator
  - Manager: create/get/query/update/delete for one model
  - Registry: explicit cross-model lookup for relation resolution

Key Features:
  - Round-trip-safe codecs for strings, numbers, booleans, exact decimals,
    JSON values, lists, maps, dates, datetimes and relations
  - Django-style filter keywords ("created__gte", "status__iexact") parsed
    into typed triples before any store access
  - Interchangeable key enumeration: one bulk listing or cursor-driven scans
  - Multiple storage backend support (Redis, DynamoDB, SQLite, in-memory)
  - Semantic error types for better error handling
  - Single-pass lazy query cursors that stop issuing store calls when dropped

Basic Usage:

	sch := schema.MustNew("BotSession",
	    fields.String("session_token", fields.NotNull()),
	    fields.DateTime("created", fields.WithDefaultFunc(func() any { return time.Now() })),
	)

	mgr, _ := kvmodels.New(kv, sch, kvmodels.Config{Prefix: "app"})

	inst, _ := mgr.Create(ctx, map[string]any{"session_token": "abc"})

	cur, _ := mgr.Query(ctx, map[string]any{"session_token__iexact": "ABC"})
	for cur.Next(ctx) {
	    fmt.Println(cur.Instance().ID())
	}

For more information, see the documentation at https://github.com/suparena/kvmodels
*/
package kvmodels
