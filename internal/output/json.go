package output

import "encoding/json"

func renderJSON(data any, indent bool) (string, error) {
	var (
		out []byte
		err error
	)
	if indent {
		out, err = json.MarshalIndent(data, "", "  ")
	} else {
		out, err = json.Marshal(data)
	}
	if err != nil {
		return "", err
	}
	return string(out), nil
}
