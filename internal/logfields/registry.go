package logfields

import "go.uber.org/zap"

func Module(val string) zap.Field {
	return zap.String("registry.module", val)
}

func Modules(val []string) zap.Field {
	return zap.Strings("registry.modules", val)
}

func ModuleVersion(val string) zap.Field {
	return zap.String("registry.module_version", val)
}

func Maintainer(val string) zap.Field {
	return zap.String("registry.maintainer", val)
}

func Reviewer(val string) zap.Field {
	return zap.String("github.reviewer", val)
}
