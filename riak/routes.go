package riak

import "fmt"

// Route names an entry in the route table.
type Route string

const (
	RouteBuckets          Route = "buckets"
	RouteListBuckets      Route = "listBuckets"
	RouteBucketProperties Route = "bucketProperties"
	RouteBucketCounters   Route = "bucketCounters"
	RouteListBucketKeys   Route = "listBucketKeys"
	RouteObjectKey        Route = "objectKey"
	RouteLinkWalking      Route = "linkWalking"
	RouteSecondaryIndexes Route = "secondaryIndexes"
	RouteMapReduce        Route = "mapReduce"
)

// Placeholders used by the default templates.
const (
	PlaceholderBucket     = "{bucket}"
	PlaceholderKey        = "{key}"
	PlaceholderType       = "{type}"
	PlaceholderIndexName  = "{index_name}"
	PlaceholderIndexValue = "{index_value}"
	PlaceholderIndexEnd   = "{index_end}"
)

// Routes maps route names to path templates relative to the DSN.
type Routes map[Route]string

// DefaultRoutes returns a fresh copy of the Riak HTTP API route table.
func DefaultRoutes() Routes {
	return Routes{
		RouteBuckets:          "/buckets",
		RouteListBuckets:      "/buckets?buckets=true",
		RouteBucketProperties: "/buckets/{bucket}/props",
		RouteBucketCounters:   "/buckets/{bucket}/counters/{key}",
		RouteListBucketKeys:   "/buckets/{bucket}/keys?keys={type}",
		RouteObjectKey:        "/buckets/{bucket}/keys/{key}",
		RouteLinkWalking:      "/buckets/{bucket}/keys/{key}/",
		RouteSecondaryIndexes: "/buckets/{bucket}/index/{index_name}/{index_value}/{index_end}",
		RouteMapReduce:        "/mapred",
	}
}

// Template returns the path template registered for route.
func (r Routes) Template(route Route) (string, error) {
	tmpl, ok := r[route]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownOperation, route)
	}
	return tmpl, nil
}

func (r Routes) clone() Routes {
	out := make(Routes, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
