// Package crawler runs a keyword image crawl from start to finish.
//
// A run splits the global image limit across the keywords, pages through
// the search results of every keyword with a non-zero quota, hands each
// photo reference to the download worker pool and finally writes the
// manifest.
//
// Sequence indices:
//
// Every submitted job gets a run-wide index drawn from one atomic counter
// on the goroutine that submits it. Indices are unique and gapless from 0,
// and they name both the output file ({keyword}_{index}.jpg) and the
// manifest slot of the job.
//
// Failure handling:
//
// A keyword whose search fails contributes no jobs; the other keywords are
// unaffected. A failed download leaves a null slot in the manifest. Only
// invalid input and filesystem failures abort a run.
//
// Usage:
//
//	client := flickr.NewClient(apiKey, 30*time.Second, log)
//	c := crawler.New(client, crawler.WithLogger(log))
//	summary, err := c.Run(ctx, crawler.Request{
//	    Keywords:  []string{"cat", "dog"},
//	    Limit:     100,
//	    OutputDir: "./downloads",
//	    Workers:   4,
//	    PageSize:  500,
//	})
package crawler
