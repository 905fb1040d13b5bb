package segment

// Strategy names a tool-call detection convention.
type Strategy string

const (
	StrategyXMLTag   Strategy = "xml_tag"
	StrategyJSONTool Strategy = "json_tool"
	StrategySentinel Strategy = "sentinel"
)
