package logfields

import "go.uber.org/zap"

func EventProvider(val string) zap.Field {
	return zap.String("event_provider", val)
}

func Event(val string) zap.Field {
	return zap.String("event", val)
}

func Mode(val string) zap.Field {
	return zap.String("mode", val)
}

func DeliveryID(val string) zap.Field {
	return zap.String("github.delivery_id", val)
}
