// Command dictquery opens one or more aar/sdct dictionary files and prints
// prefix-matched articles for a query word.
package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/jtkach/aardict"
	"github.com/schollz/progressbar/v3"
)

var (
	flagDictGlob = flag.String("dicts", "", "glob matching one or more .aar.00/.sdct dictionary files (required)")
	flagLang     = flag.String("lang", "", "index language to search; defaults to the first opened dictionary's language")
	flagWord     = flag.String("word", "", "word or prefix to look up (required)")
	flagMax      = flag.Int("max", 10, "maximum results to print per dictionary")
	flagSuggest  = flag.Bool("suggest", false, "also print in-memory completion suggestions for the query")
)

func openDictionary(path string) (aardict.Dictionary, error) {
	switch {
	case strings.HasSuffix(path, ".sdct"):
		return aardict.OpenSdct(path)
	default:
		return aardict.OpenAar(path)
	}
}

func main() {
	flag.Parse()

	if *flagDictGlob == "" || *flagWord == "" {
		log.Fatal("both -dicts and -word are required")
	}

	paths, err := filepath.Glob(*flagDictGlob)
	if err != nil {
		log.Fatalf("bad -dicts glob: %v", err)
	}
	if len(paths) == 0 {
		log.Fatalf("no files matched %q", *flagDictGlob)
	}

	bar := progressbar.NewOptions(
		len(paths),
		progressbar.OptionSetDescription("Opening dictionaries"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionThrottle(50*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() { fmt.Println() }),
	)

	collection := aardict.NewDictionaryCollection()
	var opened []aardict.Dictionary
	defer func() {
		for _, d := range opened {
			d.Close()
		}
	}()

	for _, path := range paths {
		d, err := openDictionary(path)
		if err != nil {
			log.Fatalf("opening %s: %v", path, err)
		}
		opened = append(opened, d)
		collection.Add(d)
		bar.Add(1)
	}
	bar.Finish()

	lang := *flagLang
	if lang == "" {
		lang = opened[0].IndexLanguage()
	}

	n := 0
	for wl := range collection.Lookup(lang, *flagWord, *flagMax) {
		articles, err := wl.ReadArticles()
		if err != nil {
			log.Fatalf("reading articles for %q: %v", wl.Word.Unicode, err)
		}
		for _, a := range articles {
			fmt.Printf("%s [%s]\n%s\n\n", wl.Word.Unicode, a.Dictionary.Title, a.Text)
		}
		n++
	}
	if n == 0 {
		fmt.Printf("no results for %q in language %q\n", *flagWord, lang)
	}

	if *flagSuggest {
		for _, d := range opened {
			if d.IndexLanguage() != lang {
				continue
			}
			idx := aardict.BuildCompletionIndex(d)
			suggestions := idx.Suggest(*flagWord, *flagMax)
			if len(suggestions) > 0 {
				fmt.Printf("suggestions from %s: %s\n", d.Title(), strings.Join(suggestions, ", "))
			}
		}
	}
}
