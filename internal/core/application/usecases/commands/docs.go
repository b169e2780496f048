// Package commands contains the operations that move orders through fulfilment.
//
// Every command is created through its constructor and executed by a handler
// with Handle(ctx, cmd). The handlers are:
//   - ScheduleOrder: initialise tracking and start one restaurant worker per restaurant
//   - FulfillRestaurant: the restaurant worker, one step per task
//   - DeliverOrder: the delivery worker, one step per task
//   - ApplyRestaurantStatus, ApplyDeliveryStatus: the single update path shared
//     by polling and webhooks
//   - ReconcileOrder: canonical transitions and exactly-once delivery dispatch
//   - IngestWebhook: provider push resolution
//   - NotifyStatus: status change publication
//   - ScheduleAcceptedOrders, AuditTracking: the batch operations run by the jobs
//
// TaskRouter maps queued tasks to the worker commands.
package commands
