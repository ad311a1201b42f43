package types

const (
	ActionRabbitMQConnected       = "rabbitmq_connected"
	ActionRabbitConnectionClosed  = "rabbitmq_connection_closed"
	ActionRabbitConnectionClosing = "rabbitmq_connection_closing"
	ActionRabbitReconnected       = "rabbitmq_reconnected"

	ActionStoreOpened         = "store_opened"
	ActionStoreClosed         = "store_closed"
	ActionDatabaseQueryFailed = "database_query_failed"
	ActionAuditPublishFailed  = "audit_publish_failed"
	ActionDefaultSecretInUse  = "default_secret_in_use"
)
