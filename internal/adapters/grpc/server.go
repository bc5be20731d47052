package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/casetrail/assurance-service/internal/application"
	"github.com/casetrail/assurance-service/internal/canonical"
	"github.com/casetrail/assurance-service/internal/domain"
)

// AssuranceInternalService is the service-to-service surface: sibling platform
// services append audit events, record access decisions and consult the SoD
// guard without going through the public HTTP API.
type AssuranceInternalService interface {
	AppendAuditEvent(context.Context, *structpb.Struct) (*structpb.Struct, error)
	LogAccess(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CheckSod(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type AssuranceInternalServer struct {
	service *application.Service
}

func NewAssuranceInternalServer(service *application.Service) *AssuranceInternalServer {
	return &AssuranceInternalServer{service: service}
}

func Register(server grpc.ServiceRegistrar, svc AssuranceInternalService) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: "casetrail.assurance.v1.AssuranceInternalService",
		HandlerType: (*AssuranceInternalService)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "AppendAuditEvent",
				Handler:    structHandler("AppendAuditEvent", AssuranceInternalService.AppendAuditEvent),
			},
			{
				MethodName: "LogAccess",
				Handler:    structHandler("LogAccess", AssuranceInternalService.LogAccess),
			},
			{
				MethodName: "CheckSod",
				Handler:    structHandler("CheckSod", AssuranceInternalService.CheckSod),
			},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "casetrail/contracts/proto/assurance/v1/assurance_internal.proto",
	}, svc)
}

func (s *AssuranceInternalServer) AppendAuditEvent(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()

	diff, err := canonical.FromAny(fields["diff"].AsInterface())
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "diff: %v", err)
	}
	metadata, err := canonical.FromAny(fields["metadata"].AsInterface())
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "metadata: %v", err)
	}

	event, err := s.service.AppendEvent(ctx, application.AppendEventInput{
		TenantID:    stringField(fields, "tenant_id"),
		EntityType:  stringField(fields, "entity_type"),
		EntityID:    optionalField(fields, "entity_id"),
		Action:      stringField(fields, "action"),
		ActorUserID: optionalField(fields, "actor_user_id"),
		ActorType:   stringField(fields, "actor_type"),
		Diff:        diff,
		Metadata:    metadata,
	})
	if err != nil {
		return nil, mapDomainError(err)
	}

	resp, err := structpb.NewStruct(map[string]any{
		"event_id": event.EventID.String(),
		"seq":      event.Seq,
		"hash":     event.Hash,
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "build response: %v", err)
	}
	return resp, nil
}

func (s *AssuranceInternalServer) LogAccess(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()

	entry, err := s.service.LogAccess(ctx, application.LogAccessInput{
		TenantID:     stringField(fields, "tenant_id"),
		UserID:       optionalField(fields, "user_id"),
		AccessType:   stringField(fields, "access_type"),
		ResourceType: stringField(fields, "resource_type"),
		ResourceID:   stringField(fields, "resource_id"),
		CaseID:       optionalField(fields, "case_id"),
		IPAddress:    stringField(fields, "ip_address"),
		UserAgent:    stringField(fields, "user_agent"),
		Outcome:      domain.AccessOutcome(stringField(fields, "outcome")),
		Reason:       optionalField(fields, "reason"),
	})
	if err != nil {
		return nil, mapDomainError(err)
	}

	resp, err := structpb.NewStruct(map[string]any{
		"entry_id": entry.EntryID.String(),
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "build response: %v", err)
	}
	return resp, nil
}

func (s *AssuranceInternalServer) CheckSod(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()

	result, err := s.service.CheckSod(ctx,
		stringField(fields, "tenant_id"),
		stringField(fields, "rule_id"),
		stringField(fields, "actor_user_id"),
		stringField(fields, "creator_user_id"),
	)
	if err != nil {
		return nil, mapDomainError(err)
	}

	payload := map[string]any{"allowed": result.Allowed}
	if result.ViolatedRule != nil {
		payload["violated_rule_id"] = result.ViolatedRule.ID
	}
	resp, err := structpb.NewStruct(payload)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "build response: %v", err)
	}
	return resp, nil
}

func stringField(fields map[string]*structpb.Value, name string) string {
	if v, ok := fields[name]; ok {
		return v.GetStringValue()
	}
	return ""
}

func optionalField(fields map[string]*structpb.Value, name string) *string {
	v, ok := fields[name]
	if !ok {
		return nil
	}
	s := v.GetStringValue()
	if s == "" {
		return nil
	}
	return &s
}

func mapDomainError(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrSodViolation):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrChainConflict):
		return status.Error(codes.Aborted, err.Error())
	default:
		return status.Errorf(codes.Internal, "internal error: %v", err)
	}
}

type structMethod func(AssuranceInternalService, context.Context, *structpb.Struct) (*structpb.Struct, error)

func structHandler(name string, method structMethod) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	fullMethod := "/casetrail.assurance.v1.AssuranceInternalService/" + name
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		svc, ok := srv.(AssuranceInternalService)
		if !ok {
			return nil, status.Error(codes.Internal, "invalid service binding")
		}
		req := &structpb.Struct{}
		if err := dec(req); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return method(svc, ctx, req)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			typed, ok := req.(*structpb.Struct)
			if !ok {
				return nil, status.Error(codes.InvalidArgument, "invalid request type")
			}
			return method(svc, ctx, typed)
		}
		return interceptor(ctx, req, info, handler)
	}
}
