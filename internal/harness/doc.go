// Package harness runs resolution scenarios: a document tree, a schema and
// a list of queries with their expected results, all in one YAML file.
//
// # Scenario Format
//
//	name: things_from_siblings
//	description: "List elements come from sibling documents"
//	layout:                 # optional, defaults to index + yml
//	  index: index
//	  extensions: [yml, json]
//	schema: |
//	  types: {
//	    Thing: {
//	      name: {type: "String", derive: "filename"}
//	      size: "Float!"
//	    }
//	    Query: things: "[Thing!]!"
//	  }
//	files:
//	  things/widget.yml: "size: 1.1"
//	  things/dongle.yml: "size: 2.2"
//	queries:
//	  - address: things
//	    expect:
//	      - {name: dongle, size: 2.2}
//	      - {name: widget, size: 1.1}
//	  - address: things.0
//	    type: "Int!"
//	    expect_error: DATA_NOT_FOUND
//
// A query's shape comes from its type reference when given, otherwise
// from the field the schema declares at its address. "expect" compares
// structurally (mapping order is irrelevant); "expect_error" compares the
// error code. A query with neither only has to resolve.
//
// # Deterministic Runs
//
// Every scenario runs against a fresh in-memory filesystem with a fixed
// query ID, so the snapshot written by Snapshot is byte-identical across
// runs and can be kept as a golden file.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/things.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(context.Background(), scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
