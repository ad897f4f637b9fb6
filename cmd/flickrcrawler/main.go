// Command flickrcrawler downloads Flickr search results for a set of
// keywords and records them in a manifest.
package main

func main() {
	Execute()
}
