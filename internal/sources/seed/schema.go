package seed

// Config is the root structure of the seed file: an ordered list of
// sections, each either a bare list of links or a named group.
//
// Example:
//
//	links:
//	  - url: https://example.com
//	    title: Example
//	groups:
//	  - name: Reading
//	    links:
//	      - url: https://blog.example.com
type Config struct {
	Links  []Entry `yaml:"links"`
	Groups []Group `yaml:"groups"`
}

// Group is a named collection of seed links.
type Group struct {
	Name  string  `yaml:"name"`
	Links []Entry `yaml:"links"`
}

// Entry is a single seed link.
type Entry struct {
	URL   string `yaml:"url"`
	Title string `yaml:"title,omitempty"`
}
