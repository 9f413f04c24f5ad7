package utils

import (
	"encoding/json"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// DecodeStrategy names the parser that produced a successful decode.
type DecodeStrategy string

const (
	StrategyStrict   DecodeStrategy = "json"
	StrategyRepaired DecodeStrategy = "json-repair"
	StrategyHJSON    DecodeStrategy = "hjson"
)

// RepairJSON fixes the usual hand-edit damage in exported statement files:
// trailing commas, single quotes, unquoted keys, comments, unclosed brackets.
func RepairJSON(malformed string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformed)
	if err != nil {
		return "", fmt.Errorf("JSON_REPAIR_FAILED: %w", err)
	}
	return repaired, nil
}

// HJSONToJSON converts Hjson (comments, unquoted keys and strings, optional commas)
// into standard JSON so the regular decoders and custom UnmarshalJSON methods apply.
func HJSONToJSON(data string) (string, error) {
	var result interface{}
	if err := hjson.Unmarshal([]byte(data), &result); err != nil {
		return "", fmt.Errorf("HJSON_PARSE_ERROR: %w", err)
	}

	out, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("JSON_MARSHAL_ERROR: %w", err)
	}
	return string(out), nil
}

// SmartDecode tries, in order:
//  1. standard JSON
//  2. JSON repair
//  3. Hjson
//
// and decodes into v with encoding/json so custom unmarshalers always run.
// The strategy that succeeded is returned for logging.
func SmartDecode(data []byte, v interface{}) (DecodeStrategy, error) {
	strictErr := json.Unmarshal(data, v)
	if strictErr == nil {
		return StrategyStrict, nil
	}

	if repaired, err := RepairJSON(string(data)); err == nil {
		if err := json.Unmarshal([]byte(repaired), v); err == nil {
			return StrategyRepaired, nil
		}
	}

	if converted, err := HJSONToJSON(string(data)); err == nil {
		if err := json.Unmarshal([]byte(converted), v); err == nil {
			return StrategyHJSON, nil
		}
	}

	return "", fmt.Errorf("SMART_DECODE_FAILED: all strategies failed (strict: %v)", strictErr)
}
