package entities

// ToolVersion is the version of the fabdeploy binary. Shared workspace
// configs may pin a minimum version via min_tool_version.
const ToolVersion = "1.2.0"
