package main

import (
	"strings"

	"github.com/liserjrqlxue/goUtil/textUtil"
	simple_util "github.com/liserjrqlxue/simple-util"
)

// loadTools reads the tool table (name, module, version) and fills blank
// versions from the modules loaded in the composing environment.
func loadTools(toolFile, loadedModules string) (tools []Tool, err error) {
	if !simple_util.FileExists(toolFile) {
		return nil, &ConfigurationError{Option: "tools", Reason: "tool table not found: " + toolFile}
	}
	var toolList, _ = textUtil.File2MapArray(toolFile, "\t", nil)
	return discoverTools(toolList, parseLoadedModules(loadedModules))
}

// parseLoadedModules parses LOADEDMODULES, e.g. "bwa/0.7.15:samtools/1.3.1".
func parseLoadedModules(loadedModules string) map[string]string {
	var loaded = make(map[string]string)
	for _, item := range strings.Split(loadedModules, ":") {
		i := strings.LastIndex(item, "/")
		if i <= 0 || i == len(item)-1 {
			continue
		}
		loaded[item[:i]] = item[i+1:]
	}
	return loaded
}

func discoverTools(toolList []map[string]string, loaded map[string]string) (tools []Tool, err error) {
	for _, item := range toolList {
		var tool = Tool{
			Name:    strings.TrimSpace(item["name"]),
			Module:  strings.TrimSpace(item["module"]),
			Version: strings.TrimSpace(item["version"]),
		}
		if tool.Name == "" {
			continue
		}
		if tool.Module == "" {
			tool.Module = tool.Name
		}
		if tool.Version == "" {
			version, ok := loaded[tool.Module]
			if !ok {
				return nil, &ConfigurationError{
					Option: "tools",
					Reason: "module " + tool.Module + " for " + tool.Name + " is not loaded and has no pinned version",
				}
			}
			tool.Version = version
		}
		tools = append(tools, tool)
	}
	return
}
