package posting

import (
	"bytes"
	"encoding/json"
)

// MarshalJSON writes site, title, url and date in that order. url is null
// when absent and date is left out when empty, unless the posting was
// decoded from a record that spelled them differently.
func (p Posting) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"site":`)
	if err := writeValue(&buf, p.Site); err != nil {
		return nil, err
	}
	buf.WriteString(`,"title":`)
	if err := writeValue(&buf, p.Title); err != nil {
		return nil, err
	}
	if !p.urlOmitted || p.URL != nil {
		buf.WriteString(`,"url":`)
		if err := writeValue(&buf, p.URL); err != nil {
			return nil, err
		}
	}
	switch {
	case p.Date != "":
		buf.WriteString(`,"date":`)
		if err := writeValue(&buf, p.Date); err != nil {
			return nil, err
		}
	case p.emptyDate != "":
		buf.WriteString(`,"date":`)
		buf.WriteString(p.emptyDate)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a snapshot record and remembers which optional keys
// it carried.
func (p *Posting) UnmarshalJSON(data []byte) error {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}

	var record struct {
		Site  string  `json:"site"`
		Title string  `json:"title"`
		URL   *string `json:"url"`
		Date  *string `json:"date"`
	}
	if err := json.Unmarshal(data, &record); err != nil {
		return err
	}

	*p = Posting{Site: record.Site, Title: record.Title, URL: record.URL}
	if _, ok := keys["url"]; !ok {
		p.urlOmitted = true
	}
	if record.Date != nil {
		p.Date = *record.Date
	}
	if raw, ok := keys["date"]; ok && p.Date == "" {
		p.emptyDate = string(bytes.TrimSpace(raw))
	}
	return nil
}

func writeValue(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Truncate(buf.Len() - 1)
	return nil
}
