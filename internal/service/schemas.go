package service

import "github.com/sashabaranov/go-openai/jsonschema"

func stringProp() jsonschema.Definition {
	return jsonschema.Definition{Type: jsonschema.String}
}

func suggestionItemSchema() jsonschema.Definition {
	return jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"wordOrPhrase":    stringProp(),
			"partOfSpeech":    stringProp(),
			"translation":     stringProp(),
			"exampleSentence": stringProp(),
		},
		Required:             []string{"wordOrPhrase", "partOfSpeech", "translation", "exampleSentence"},
		AdditionalProperties: false,
	}
}

func suggestionsArray() jsonschema.Definition {
	item := suggestionItemSchema()
	return jsonschema.Definition{Type: jsonschema.Array, Items: &item}
}

func discoverySchema() *jsonschema.Definition {
	return &jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"answer":      stringProp(),
			"suggestions": suggestionsArray(),
		},
		Required:             []string{"answer", "suggestions"},
		AdditionalProperties: false,
	}
}

func suggestionsSchema() *jsonschema.Definition {
	return &jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"suggestions": suggestionsArray(),
		},
		Required:             []string{"suggestions"},
		AdditionalProperties: false,
	}
}

func cardDetailSchema() *jsonschema.Definition {
	return &jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"primaryMeaning":             stringProp(),
			"partOfSpeech":               stringProp(),
			"pronunciationIpa":           stringProp(),
			"exampleSentence":            stringProp(),
			"translation":                stringProp(),
			"exampleSentenceTranslation": stringProp(),
		},
		Required: []string{
			"primaryMeaning", "partOfSpeech", "pronunciationIpa",
			"exampleSentence", "translation", "exampleSentenceTranslation",
		},
		AdditionalProperties: false,
	}
}

func refineSchema() *jsonschema.Definition {
	return &jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"refinedValue": stringProp(),
		},
		Required:             []string{"refinedValue"},
		AdditionalProperties: false,
	}
}

func checkExistingSchema() *jsonschema.Definition {
	return &jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"suggestions":       suggestionsArray(),
			"existingCardFound": {Type: jsonschema.Boolean},
			"existingCard": {
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"wordOrPhrase":   stringProp(),
					"primaryMeaning": stringProp(),
				},
				Required:             []string{"wordOrPhrase", "primaryMeaning"},
				AdditionalProperties: false,
			},
		},
		Required:             []string{"suggestions", "existingCardFound"},
		AdditionalProperties: false,
	}
}
