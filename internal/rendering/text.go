package rendering

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PlainText extracts readable text from rendered HTML: one line per
// heading, entry line or skill.
func PlainText(html []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "", &RenderError{Message: "failed to parse HTML", Cause: err}
	}
	doc.Find("style, script, img").Remove()
	doc.Find("br").ReplaceWithHtml(" ")

	var lines []string
	add := func(s string) {
		if s = cleanWhitespace(s); s != "" {
			lines = append(lines, s)
		}
	}

	add(doc.Find(".full-name").First().Text())
	add(doc.Find(".job-title").First().Text())
	add(doc.Find(".contact").First().Text())

	doc.Find("section").Each(func(_ int, s *goquery.Selection) {
		lines = append(lines, "")
		add(strings.ToUpper(s.Find("h2").First().Text()))
		if s.Is("#skills") {
			var skills []string
			s.Find("li").Each(func(_ int, li *goquery.Selection) {
				skills = append(skills, cleanWhitespace(li.Text()))
			})
			add(strings.Join(skills, ", "))
			return
		}
		if s.Find(".entry").Length() == 0 {
			add(s.Find("p").Text())
			return
		}
		s.Find(".entry").Each(func(_ int, e *goquery.Selection) {
			head := cleanWhitespace(e.Find(".heading").Text())
			if dates := cleanWhitespace(e.Find(".dates").Text()); dates != "" {
				head = strings.TrimSpace(head + " (" + dates + ")")
			}
			add(head)
			add(e.Find(".sub").Text())
			add(e.Find(".extra").Text())
			add(e.Find(".description").Text())
		})
	})

	return strings.Join(lines, "\n") + "\n", nil
}

func cleanWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
