package main

import (
	"fmt"
	"math/rand"
	"strconv"

	"bookcatalog/internal/book"
)

var (
	words   = []string{"Silent", "Garden", "River", "Machine", "Empire", "Winter", "Letters", "Shadow", "Harbor", "Orbit"}
	authors = []string{"Ursula Le Guin", "George Orwell", "Octavia Butler", "Italo Calvino", "Toni Morrison", "Stanislaw Lem", "Chinua Achebe", "Jorge Luis Borges"}
)

type generator struct {
	rnd     *rand.Rand
	maxYear int
}

func newGenerator(rnd *rand.Rand, maxYear int) *generator {
	return &generator{rnd: rnd, maxYear: maxYear}
}

// next returns a book that passes validation. The ISBN is derived from i so
// every generated book carries a distinct one.
func (g *generator) next(i int) book.AddBook {
	return book.AddBook{
		Title:  fmt.Sprintf("%s %s %d", g.word(), g.word(), i+1),
		Author: authors[g.rnd.Intn(len(authors))],
		Year:   1900 + g.rnd.Intn(g.maxYear-1900+1),
		ISBN:   isbn13(i),
	}
}

func (g *generator) word() string {
	return words[g.rnd.Intn(len(words))]
}

// isbn13 builds a hyphenated 978 ISBN with a valid check digit.
func isbn13(n int) string {
	body := fmt.Sprintf("978%09d", n%1_000_000_000)
	sum := 0
	for i, c := range body {
		d := int(c - '0')
		if i%2 == 1 {
			d *= 3
		}
		sum += d
	}
	check := (10 - sum%10) % 10
	return body[:3] + "-" + body[3:] + strconv.Itoa(check)
}
