// Package timeline defines the scheduling timeline document rendered by the
// timeline tool and loads it from JSON.
//
// A document describes a total duration in microseconds and an ordered list
// of nodes (compute units, workers, pipeline stages). Each node owns an
// ordered list of jobs, each a time interval with a displayable tag:
//
//	{
//	  "duration": 1000000,
//	  "nodes": [
//	    {
//	      "name": "CPU0", "type": "core",
//	      "jobs": [{"from": 0, "to": 500000, "t": 1}]
//	    }
//	  ]
//	}
//
// [ReadJSON] validates the schema once at load time. Missing keys and wrong
// value types are reported as errors with code INVALID_DOCUMENT and the path
// of the offending field (for example "nodes[2].jobs[0].from"). Semantic
// irregularities such as a job ending after the timeline duration are not
// errors; [Timeline.Stats] counts them so callers can warn.
package timeline
