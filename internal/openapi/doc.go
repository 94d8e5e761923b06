// Package openapi loads OpenAPI 3.x documents into an ordered, read-only
// model used by the scenario synthesizer, the mock data generator and the
// mock server.
//
// Documents are decoded through yaml.Node so that paths, responses and
// schema properties keep the order in which they were written. JSON input is
// handled by the same decoder.
//
// Endpoints are listed path by path; within a path the methods follow the
// fixed order GET, POST, PUT, DELETE, PATCH, HEAD, OPTIONS. A repeated
// (path, method) pair replaces the earlier definition at its original
// position.
//
// Validation collects every problem it finds and reports them together in a
// single *MalformedSpecError:
//
//	spec, err := openapi.Parse("api.yaml")
//	var malformed *openapi.MalformedSpecError
//	if errors.As(err, &malformed) {
//		for _, p := range malformed.Problems {
//			fmt.Println(p)
//		}
//	}
package openapi
