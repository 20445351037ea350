package handlers

import (
	userRepo "taxly/database/repository/user"
)

// HandlerBundle groups all endpoint handlers into one struct. The user
// repository rides along for route-level auth middleware.
type HandlerBundle struct {
	UserRepo userRepo.UserRepository

	Flow    *FlowHandler
	Verify  *VerifyHandler
	Plans   *PlanHandler
	Account *AccountHandler
}
